package action

import "golang.org/x/xerrors"

// Kind is the discriminant of an action. The string value is the identifier
// consumed by the execution engine and must match it exactly.
type Kind string

const (
	// CreateImplicitAccount creates and funds a named implicit account.
	CreateImplicitAccount Kind = "create_implicit_account"
	// OriginateContract originates a named contract.
	OriginateContract Kind = "originate_contract"
	// CallContract calls the entrypoint of a contract.
	CallContract Kind = "call_contract"
	// AssertAccountBalance asserts the balance of an account.
	AssertAccountBalance Kind = "assert_account_balance"
	// AssertContractStorage asserts the storage of a contract.
	AssertContractStorage Kind = "assert_contract_storage"
	// ModifyChainID changes the chain identifier.
	ModifyChainID Kind = "modify_chain_id"
	// ModifyBlockLevel changes the level of the head block.
	ModifyBlockLevel Kind = "modify_block_level"
	// ModifyBlockTimestamp changes the timestamp of the head block.
	ModifyBlockTimestamp Kind = "modify_block_timestamp"
	// PackData serializes a value of a given type.
	PackData Kind = "pack_data"
)

// kinds is the taxonomy in declaration order. New kinds are appended.
var kinds = []Kind{
	CreateImplicitAccount,
	OriginateContract,
	CallContract,
	AssertAccountBalance,
	AssertContractStorage,
	ModifyChainID,
	ModifyBlockLevel,
	ModifyBlockTimestamp,
	PackData,
}

var kindSet = func() map[Kind]struct{} {
	set := make(map[Kind]struct{}, len(kinds))
	for _, k := range kinds {
		set[k] = struct{}{}
	}

	return set
}()

// Kinds returns the list of the supported kinds.
func Kinds() []Kind {
	res := make([]Kind, len(kinds))
	copy(res, kinds)

	return res
}

// Valid returns true if the kind is part of the taxonomy.
func (k Kind) Valid() bool {
	_, found := kindSet[k]
	return found
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	return string(k)
}

// ParseKind returns the kind of the discriminant, or an error wrapping
// ErrUnknownKind if it is not part of the taxonomy. The comparison is case
// sensitive.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", xerrors.Errorf("invalid kind '%s': %w", s, ErrUnknownKind)
	}

	return k, nil
}
