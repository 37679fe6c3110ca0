// Package engine contains the access decision coordinator: the
// orchestration unit that combines trust scores, request risk, and policy
// resolution into one immutable access decision, retains the decision for
// audit replay, and triggers downstream enforcement when the decision
// restricts the entity.
package engine
