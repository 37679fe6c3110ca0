// Package identity carries the verified session identity through request
// context. The session middleware verifies the token and stores an Identity;
// handlers and the decision pipeline read it back with Get.
package identity
