package domain

// TargetKind is the classification of one target token.
type TargetKind string

const (
	TargetKindDomain  TargetKind = "domain"
	TargetKindIP      TargetKind = "ip"
	TargetKindInvalid TargetKind = "invalid"
)

// TargetUnit is one parsed piece of a raw target string. Never persisted.
type TargetUnit struct {
	Kind  TargetKind
	Value string
}
