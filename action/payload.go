package action

import "golang.org/x/xerrors"

// Payload is the kind-specific data of an action. The set of implementations
// is closed: there is exactly one payload type per kind.
type Payload interface {
	// Kind returns the kind the payload belongs to.
	Kind() Kind

	// missing returns the name of the required fields that are not set.
	missing() []string

	// invalid returns an error if a field that is set has a value the wire
	// record cannot carry.
	invalid() error
}

// MaxLevel is the largest block level in absolute value. Above it, a level is
// no longer exact as a JSON number.
const MaxLevel = 1<<53 - 1

// CreateImplicitAccountPayload is the payload of a create_implicit_account
// action. The balance is a decimal amount encoded as text.
//
// - implements action.Payload
type CreateImplicitAccountPayload struct {
	Name    string
	Balance string
}

// Kind implements action.Payload.
func (CreateImplicitAccountPayload) Kind() Kind { return CreateImplicitAccount }

func (CreateImplicitAccountPayload) missing() []string { return nil }

func (CreateImplicitAccountPayload) invalid() error { return nil }

// OriginateContractPayload is the payload of an originate_contract action.
//
// - implements action.Payload
type OriginateContractPayload struct {
	Name    string
	Balance string
	Code    Data
	Storage Data
}

// Kind implements action.Payload.
func (OriginateContractPayload) Kind() Kind { return OriginateContract }

func (p OriginateContractPayload) missing() []string {
	return missingData(field{"code", p.Code}, field{"storage", p.Storage})
}

func (p OriginateContractPayload) invalid() error {
	return invalidData(field{"code", p.Code}, field{"storage", p.Storage})
}

// CallContractPayload is the payload of a call_contract action. Level,
// Timestamp and ExpectFailwith are optional and left out of the wire record
// when they are not set.
//
// - implements action.Payload
type CallContractPayload struct {
	Recipient  string
	Sender     string
	Amount     string
	Entrypoint string
	Parameter  Data

	Level          *int64
	Timestamp      *string
	ExpectFailwith Data
}

// Kind implements action.Payload.
func (CallContractPayload) Kind() Kind { return CallContract }

func (p CallContractPayload) missing() []string {
	return missingData(field{"parameter", p.Parameter})
}

func (p CallContractPayload) invalid() error {
	if p.Level != nil {
		err := checkLevel(*p.Level)
		if err != nil {
			return err
		}
	}

	return invalidData(field{"parameter", p.Parameter}, field{"expect_failwith", p.ExpectFailwith})
}

// AssertAccountBalancePayload is the payload of an assert_account_balance
// action.
//
// - implements action.Payload
type AssertAccountBalancePayload struct {
	AccountName string
	Balance     string
}

// Kind implements action.Payload.
func (AssertAccountBalancePayload) Kind() Kind { return AssertAccountBalance }

func (AssertAccountBalancePayload) missing() []string { return nil }

func (AssertAccountBalancePayload) invalid() error { return nil }

// AssertContractStoragePayload is the payload of an assert_contract_storage
// action.
//
// - implements action.Payload
type AssertContractStoragePayload struct {
	ContractName string
	Storage      Data
}

// Kind implements action.Payload.
func (AssertContractStoragePayload) Kind() Kind { return AssertContractStorage }

func (p AssertContractStoragePayload) missing() []string {
	return missingData(field{"storage", p.Storage})
}

func (p AssertContractStoragePayload) invalid() error {
	return invalidData(field{"storage", p.Storage})
}

// ModifyChainIDPayload is the payload of a modify_chain_id action.
//
// - implements action.Payload
type ModifyChainIDPayload struct {
	ChainID string
}

// Kind implements action.Payload.
func (ModifyChainIDPayload) Kind() Kind { return ModifyChainID }

func (ModifyChainIDPayload) missing() []string { return nil }

func (ModifyChainIDPayload) invalid() error { return nil }

// ModifyBlockLevelPayload is the payload of a modify_block_level action.
//
// - implements action.Payload
type ModifyBlockLevelPayload struct {
	Level int64
}

// Kind implements action.Payload.
func (ModifyBlockLevelPayload) Kind() Kind { return ModifyBlockLevel }

func (ModifyBlockLevelPayload) missing() []string { return nil }

func (p ModifyBlockLevelPayload) invalid() error { return checkLevel(p.Level) }

// ModifyBlockTimestampPayload is the payload of a modify_block_timestamp
// action. The timestamp is an ISO-8601 string that is not parsed.
//
// - implements action.Payload
type ModifyBlockTimestampPayload struct {
	Timestamp string
}

// Kind implements action.Payload.
func (ModifyBlockTimestampPayload) Kind() Kind { return ModifyBlockTimestamp }

func (ModifyBlockTimestampPayload) missing() []string { return nil }

func (ModifyBlockTimestampPayload) invalid() error { return nil }

// PackDataPayload is the payload of a pack_data action.
//
// - implements action.Payload
type PackDataPayload struct {
	Data Data
	Type Data
}

// Kind implements action.Payload.
func (PackDataPayload) Kind() Kind { return PackData }

func (p PackDataPayload) missing() []string {
	return missingData(field{"data", p.Data}, field{"type", p.Type})
}

func (p PackDataPayload) invalid() error {
	return invalidData(field{"data", p.Data}, field{"type", p.Type})
}

type field struct {
	name  string
	value Data
}

func missingData(fields ...field) []string {
	var res []string
	for _, f := range fields {
		if f.value.IsZero() {
			res = append(res, f.name)
		}
	}

	return res
}

// invalidData checks the structured data that is set. Data can be built from
// raw bytes without ParseData, so it is checked again here.
func invalidData(fields ...field) error {
	for _, f := range fields {
		if f.value.IsZero() {
			continue
		}

		err := checkData(f.value)
		if err != nil {
			return xerrors.Errorf("field '%s': %w", f.name, err)
		}
	}

	return nil
}

func checkLevel(level int64) error {
	if level > MaxLevel || level < -MaxLevel {
		return xerrors.Errorf("field 'level': %d exceeds %d: %w",
			level, int64(MaxLevel), ErrShapeMismatch)
	}

	return nil
}

// Ref returns a pointer to the value. It helps to fill the optional fields of
// a payload.
func Ref[T any](v T) *T {
	return &v
}
