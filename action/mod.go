// Package action defines the actions of a test scenario and the builder that
// creates them.
//
// An action pairs a kind with the payload of that kind. The set of kinds is
// closed and a payload can only be attached to its own kind:
//
//	act, err := action.NewCallContract(action.CallContractPayload{
//		Recipient:  "KT1abc",
//		Sender:     "tz1xyz",
//		Amount:     "100",
//		Entrypoint: "default",
//		Parameter:  action.MustParseData(`{"int":"0"}`),
//	})
//
// Consumers that need to handle every kind implement the Visitor interface, so
// that a new kind breaks the build until it is handled.
package action

import (
	"strings"

	"github.com/sctester/scenario/serde"
	"github.com/sctester/scenario/serde/registry"
	"golang.org/x/xerrors"
)

var (
	// ErrUnknownKind is returned when a discriminant is not part of the
	// taxonomy.
	ErrUnknownKind = xerrors.New("unknown action kind")

	// ErrShapeMismatch is returned when a payload misses a required field or
	// holds a field of the wrong type for its kind.
	ErrShapeMismatch = xerrors.New("shape mismatch")
)

var actionFormats = registry.NewSimpleRegistry("action")

// RegisterActionFormat registers the engine for the provided format.
func RegisterActionFormat(f serde.Format, e serde.FormatEngine) {
	actionFormats.Register(f, e)
}

// Action is a single operation request of a test scenario. It is immutable
// once built.
//
// - implements serde.Message
type Action struct {
	kind    Kind
	payload Payload
}

// Build returns the action of the given kind with the payload. It fails if the
// kind is unknown, if the payload belongs to another kind, if a required
// structured data is missing, or if a field holds a value that the wire record
// cannot carry. The payload is embedded as is.
func Build(kind Kind, payload Payload) (Action, error) {
	if !kind.Valid() {
		return Action{}, xerrors.Errorf("invalid kind '%s': %w", kind, ErrUnknownKind)
	}

	actual, ok := kindOf(payload)
	if !ok {
		return Action{}, xerrors.Errorf("unsupported payload of type '%T': %w",
			payload, ErrShapeMismatch)
	}

	if actual != kind {
		return Action{}, xerrors.Errorf("payload of kind '%s' given for kind '%s': %w",
			actual, kind, ErrShapeMismatch)
	}

	missing := payload.missing()
	if len(missing) > 0 {
		return Action{}, xerrors.Errorf("action of kind '%s' misses [%s]: %w",
			kind, strings.Join(missing, ", "), ErrShapeMismatch)
	}

	err := payload.invalid()
	if err != nil {
		return Action{}, xerrors.Errorf("action of kind '%s' is invalid: %w", kind, err)
	}

	act := Action{
		kind:    kind,
		payload: payload,
	}

	return act, nil
}

// NewCreateImplicitAccount returns a create_implicit_account action.
func NewCreateImplicitAccount(p CreateImplicitAccountPayload) (Action, error) {
	return Build(CreateImplicitAccount, p)
}

// NewOriginateContract returns an originate_contract action.
func NewOriginateContract(p OriginateContractPayload) (Action, error) {
	return Build(OriginateContract, p)
}

// NewCallContract returns a call_contract action.
func NewCallContract(p CallContractPayload) (Action, error) {
	return Build(CallContract, p)
}

// NewAssertAccountBalance returns an assert_account_balance action.
func NewAssertAccountBalance(p AssertAccountBalancePayload) (Action, error) {
	return Build(AssertAccountBalance, p)
}

// NewAssertContractStorage returns an assert_contract_storage action.
func NewAssertContractStorage(p AssertContractStoragePayload) (Action, error) {
	return Build(AssertContractStorage, p)
}

// NewModifyChainID returns a modify_chain_id action.
func NewModifyChainID(p ModifyChainIDPayload) (Action, error) {
	return Build(ModifyChainID, p)
}

// NewModifyBlockLevel returns a modify_block_level action.
func NewModifyBlockLevel(p ModifyBlockLevelPayload) (Action, error) {
	return Build(ModifyBlockLevel, p)
}

// NewModifyBlockTimestamp returns a modify_block_timestamp action.
func NewModifyBlockTimestamp(p ModifyBlockTimestampPayload) (Action, error) {
	return Build(ModifyBlockTimestamp, p)
}

// NewPackData returns a pack_data action.
func NewPackData(p PackDataPayload) (Action, error) {
	return Build(PackData, p)
}

// GetKind returns the kind of the action.
func (a Action) GetKind() Kind {
	return a.kind
}

// GetPayload returns the payload of the action.
func (a Action) GetPayload() Payload {
	return a.payload
}

// IsZero returns true if the action has not been built.
func (a Action) IsZero() bool {
	return a.payload == nil
}

// Accept calls the method of the visitor that matches the kind of the action
// and returns its error.
func (a Action) Accept(v Visitor) error {
	switch p := a.payload.(type) {
	case CreateImplicitAccountPayload:
		return v.VisitCreateImplicitAccount(p)
	case OriginateContractPayload:
		return v.VisitOriginateContract(p)
	case CallContractPayload:
		return v.VisitCallContract(p)
	case AssertAccountBalancePayload:
		return v.VisitAssertAccountBalance(p)
	case AssertContractStoragePayload:
		return v.VisitAssertContractStorage(p)
	case ModifyChainIDPayload:
		return v.VisitModifyChainID(p)
	case ModifyBlockLevelPayload:
		return v.VisitModifyBlockLevel(p)
	case ModifyBlockTimestampPayload:
		return v.VisitModifyBlockTimestamp(p)
	case PackDataPayload:
		return v.VisitPackData(p)
	default:
		return xerrors.Errorf("action has no payload: %w", ErrShapeMismatch)
	}
}

// Serialize implements serde.Message. It returns the serialized data of the
// action.
func (a Action) Serialize(ctx serde.Context) ([]byte, error) {
	format := actionFormats.Get(ctx.GetFormat())

	data, err := format.Encode(ctx, a)
	if err != nil {
		return nil, xerrors.Errorf("failed to encode: %w", err)
	}

	return data, nil
}

// Visitor is implemented by the consumers that handle every kind of action.
type Visitor interface {
	VisitCreateImplicitAccount(CreateImplicitAccountPayload) error
	VisitOriginateContract(OriginateContractPayload) error
	VisitCallContract(CallContractPayload) error
	VisitAssertAccountBalance(AssertAccountBalancePayload) error
	VisitAssertContractStorage(AssertContractStoragePayload) error
	VisitModifyChainID(ModifyChainIDPayload) error
	VisitModifyBlockLevel(ModifyBlockLevelPayload) error
	VisitModifyBlockTimestamp(ModifyBlockTimestampPayload) error
	VisitPackData(PackDataPayload) error
}

// Factory is the factory to deserialize actions.
//
// - implements serde.Factory
type Factory struct{}

// NewFactory returns a new action factory.
func NewFactory() Factory {
	return Factory{}
}

// Deserialize implements serde.Factory. It populates the action from the data
// if appropriate, otherwise it returns an error.
func (f Factory) Deserialize(ctx serde.Context, data []byte) (serde.Message, error) {
	return f.ActionOf(ctx, data)
}

// ActionOf returns the action of the data if appropriate, otherwise it returns
// an error.
func (f Factory) ActionOf(ctx serde.Context, data []byte) (Action, error) {
	format := actionFormats.Get(ctx.GetFormat())

	msg, err := format.Decode(ctx, data)
	if err != nil {
		return Action{}, xerrors.Errorf("failed to decode: %w", err)
	}

	act, ok := msg.(Action)
	if !ok {
		return Action{}, xerrors.Errorf("invalid action of type '%T'", msg)
	}

	return act, nil
}

// kindOf returns the kind of the payload if it is one of the value types of the
// taxonomy.
func kindOf(payload Payload) (Kind, bool) {
	switch payload.(type) {
	case CreateImplicitAccountPayload,
		OriginateContractPayload,
		CallContractPayload,
		AssertAccountBalancePayload,
		AssertContractStoragePayload,
		ModifyChainIDPayload,
		ModifyBlockLevelPayload,
		ModifyBlockTimestampPayload,
		PackDataPayload:

		return payload.Kind(), true
	default:
		return "", false
	}
}
