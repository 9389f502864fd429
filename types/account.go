package types

// Account identifies a party on the host ledger. The identity substrate
// that authenticates callers lives outside Recur; an Account is consumed
// as an opaque identifier and never interpreted.
type Account string

// IsZero reports whether the account is unset.
func (a Account) IsZero() bool { return a == "" }

func (a Account) String() string { return string(a) }
