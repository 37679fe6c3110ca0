package model

import "time"

// SegmentType selects which boundary block of a micro-segment is authoritative
// and which enforcement collaborator receives the segment.
type SegmentType string

const (
	SegmentNetwork     SegmentType = "network"
	SegmentApplication SegmentType = "application"
	SegmentData        SegmentType = "data"
	SegmentUser        SegmentType = "user"
	SegmentService     SegmentType = "service"
)

// NetworkBoundary bounds a network segment.
type NetworkBoundary struct {
	Subnets []string `json:"subnets,omitempty" yaml:"subnets,omitempty"`
	VLANs   []string `json:"vlans,omitempty" yaml:"vlans,omitempty"`
	Ports   []int    `json:"ports,omitempty" yaml:"ports,omitempty"`
}

// ApplicationBoundary bounds an application segment.
type ApplicationBoundary struct {
	Services   []string `json:"services,omitempty" yaml:"services,omitempty"`
	Endpoints  []string `json:"endpoints,omitempty" yaml:"endpoints,omitempty"`
	Namespaces []string `json:"namespaces,omitempty" yaml:"namespaces,omitempty"`
}

// DataBoundary bounds a data segment.
type DataBoundary struct {
	Classifications []string `json:"classifications,omitempty" yaml:"classifications,omitempty"`
	Stores          []string `json:"stores,omitempty" yaml:"stores,omitempty"`
}

// UserBoundary bounds a user segment.
type UserBoundary struct {
	Groups []string `json:"groups,omitempty" yaml:"groups,omitempty"`
	Roles  []string `json:"roles,omitempty" yaml:"roles,omitempty"`
}

// ServiceBoundary bounds a service segment.
type ServiceBoundary struct {
	Names    []string `json:"names,omitempty" yaml:"names,omitempty"`
	Accounts []string `json:"accounts,omitempty" yaml:"accounts,omitempty"`
}

// SegmentBoundaries is the closed set of per-type boundary blocks. Only the
// block matching the segment's declared type must be populated.
type SegmentBoundaries struct {
	Network     *NetworkBoundary     `json:"network,omitempty" yaml:"network,omitempty"`
	Application *ApplicationBoundary `json:"application,omitempty" yaml:"application,omitempty"`
	Data        *DataBoundary        `json:"data,omitempty" yaml:"data,omitempty"`
	User        *UserBoundary        `json:"user,omitempty" yaml:"user,omitempty"`
	Service     *ServiceBoundary     `json:"service,omitempty" yaml:"service,omitempty"`
}

// RuleAction is what a segment access rule does with matching traffic.
type RuleAction string

const (
	RuleAllow   RuleAction = "allow"
	RuleDeny    RuleAction = "deny"
	RuleInspect RuleAction = "inspect"
)

// SegmentRule is one ordered access rule inside a segment.
type SegmentRule struct {
	ID          string     `json:"id" yaml:"id"`
	Source      string     `json:"source" yaml:"source"`
	Destination string     `json:"destination" yaml:"destination"`
	Protocol    string     `json:"protocol,omitempty" yaml:"protocol,omitempty"`
	Action      RuleAction `json:"action" yaml:"action"`
	Conditions  []string   `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// SegmentMonitoring configures observation of traffic inside a segment.
type SegmentMonitoring struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	Alerting bool   `json:"alerting" yaml:"alerting"`
}

// MicroSegment is a named, independently governed isolation boundary.
// Once created and validated it is immutable; reads return snapshots.
type MicroSegment struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Type        SegmentType       `json:"type" yaml:"type"`
	Boundaries  SegmentBoundaries `json:"boundaries" yaml:"boundaries"`
	Rules       []SegmentRule     `json:"rules,omitempty" yaml:"rules,omitempty"`
	Monitoring  SegmentMonitoring `json:"monitoring" yaml:"monitoring"`
	Compliance  []string          `json:"compliance,omitempty" yaml:"compliance,omitempty"`
	CreatedAt   time.Time         `json:"created_at" yaml:"created_at"`
}
