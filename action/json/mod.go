// Package json implements the JSON format of the actions.
//
// An action is encoded as {"kind": <discriminant>, "payload": {...}} with the
// snake_case field names consumed by the execution engine. Decoding checks the
// payload against the JSON Schema of its kind before the action is built, so
// that a malformed payload fails with action.ErrShapeMismatch and an unknown
// discriminant with action.ErrUnknownKind.
package json

import (
	"encoding/json"

	"github.com/sctester/scenario"
	"github.com/sctester/scenario/action"
	"github.com/sctester/scenario/serde"
	"github.com/tidwall/gjson"
	"golang.org/x/xerrors"
)

func init() {
	schemas, err := loadSchemas()
	if err != nil {
		panic("action schemas are corrupted: " + err.Error())
	}

	action.RegisterActionFormat(serde.FormatJSON, actionFormat{schemas: schemas})
}

// ActionJSON is the JSON message of an action.
type ActionJSON struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// CreateImplicitAccountJSON is the JSON payload of create_implicit_account.
type CreateImplicitAccountJSON struct {
	Name    string `json:"name"`
	Balance string `json:"balance"`
}

// OriginateContractJSON is the JSON payload of originate_contract.
type OriginateContractJSON struct {
	Name    string          `json:"name"`
	Balance string          `json:"balance"`
	Code    json.RawMessage `json:"code"`
	Storage json.RawMessage `json:"storage"`
}

// CallContractJSON is the JSON payload of call_contract.
type CallContractJSON struct {
	Recipient      string          `json:"recipient"`
	Sender         string          `json:"sender"`
	Amount         string          `json:"amount"`
	Entrypoint     string          `json:"entrypoint"`
	Parameter      json.RawMessage `json:"parameter"`
	Level          *int64          `json:"level,omitempty"`
	Timestamp      *string         `json:"timestamp,omitempty"`
	ExpectFailwith json.RawMessage `json:"expect_failwith,omitempty"`
}

// AssertAccountBalanceJSON is the JSON payload of assert_account_balance.
type AssertAccountBalanceJSON struct {
	AccountName string `json:"account_name"`
	Balance     string `json:"balance"`
}

// AssertContractStorageJSON is the JSON payload of assert_contract_storage.
type AssertContractStorageJSON struct {
	ContractName string          `json:"contract_name"`
	Storage      json.RawMessage `json:"storage"`
}

// ModifyChainIDJSON is the JSON payload of modify_chain_id.
type ModifyChainIDJSON struct {
	ChainID string `json:"chain_id"`
}

// ModifyBlockLevelJSON is the JSON payload of modify_block_level.
type ModifyBlockLevelJSON struct {
	Level int64 `json:"level"`
}

// ModifyBlockTimestampJSON is the JSON payload of modify_block_timestamp.
type ModifyBlockTimestampJSON struct {
	Timestamp string `json:"timestamp"`
}

// PackDataJSON is the JSON payload of pack_data.
type PackDataJSON struct {
	Data json.RawMessage `json:"data"`
	Type json.RawMessage `json:"type"`
}

// actionFormat is the JSON format engine of the actions.
//
// - implements serde.FormatEngine
type actionFormat struct {
	schemas schemaSet
}

// Encode implements serde.FormatEngine. It returns the JSON data of the action
// if appropriate, otherwise it returns an error.
func (f actionFormat) Encode(ctx serde.Context, msg serde.Message) ([]byte, error) {
	act, ok := msg.(action.Action)
	if !ok {
		return nil, xerrors.Errorf("unsupported message of type '%T'", msg)
	}

	enc := &payloadEncoder{ctx: ctx}

	err := act.Accept(enc)
	if err != nil {
		return nil, xerrors.Errorf("failed to encode payload: %w", err)
	}

	m := ActionJSON{
		Kind:    string(act.GetKind()),
		Payload: enc.data,
	}

	data, err := ctx.Marshal(m)
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal: %v", err)
	}

	return data, nil
}

// Decode implements serde.FormatEngine. It returns the action of the JSON data
// if the kind is known and the payload has the shape of the kind, otherwise it
// returns an error.
func (f actionFormat) Decode(ctx serde.Context, data []byte) (serde.Message, error) {
	if !gjson.ValidBytes(data) {
		return nil, xerrors.Errorf("action is not valid JSON: %w", action.ErrShapeMismatch)
	}

	kind := gjson.GetBytes(data, "kind")
	if kind.Type != gjson.String {
		return nil, xerrors.Errorf("action misses a string 'kind': %w", action.ErrShapeMismatch)
	}

	k, err := action.ParseKind(kind.Str)
	if err != nil {
		return nil, err
	}

	payload := gjson.GetBytes(data, "payload")
	if !payload.Exists() {
		return nil, xerrors.Errorf("action of kind '%s' misses 'payload': %w",
			k, action.ErrShapeMismatch)
	}

	raw := []byte(payload.Raw)

	err = f.schemas.check(k, raw)
	if err != nil {
		return nil, err
	}

	p, err := decodePayload(ctx, k, raw)
	if err != nil {
		return nil, xerrors.Errorf("payload of kind '%s' (%v): %w", k, err, action.ErrShapeMismatch)
	}

	act, err := action.Build(k, p)
	if err != nil {
		return nil, xerrors.Errorf("failed to build: %w", err)
	}

	scenario.Logger.Trace().Str("kind", k.String()).Msg("action decoded")

	return act, nil
}

// payloadEncoder marshals the payload of an action. Being a visitor, it has to
// be updated whenever a kind is added to the taxonomy.
//
// - implements action.Visitor
type payloadEncoder struct {
	ctx  serde.Context
	data json.RawMessage
}

func (e *payloadEncoder) marshal(m interface{}) error {
	data, err := e.ctx.Marshal(m)
	if err != nil {
		return xerrors.Errorf("couldn't marshal: %v", err)
	}

	e.data = data

	return nil
}

func (e *payloadEncoder) VisitCreateImplicitAccount(p action.CreateImplicitAccountPayload) error {
	return e.marshal(CreateImplicitAccountJSON{
		Name:    p.Name,
		Balance: p.Balance,
	})
}

func (e *payloadEncoder) VisitOriginateContract(p action.OriginateContractPayload) error {
	return e.marshal(OriginateContractJSON{
		Name:    p.Name,
		Balance: p.Balance,
		Code:    json.RawMessage(p.Code),
		Storage: json.RawMessage(p.Storage),
	})
}

func (e *payloadEncoder) VisitCallContract(p action.CallContractPayload) error {
	return e.marshal(CallContractJSON{
		Recipient:      p.Recipient,
		Sender:         p.Sender,
		Amount:         p.Amount,
		Entrypoint:     p.Entrypoint,
		Parameter:      json.RawMessage(p.Parameter),
		Level:          p.Level,
		Timestamp:      p.Timestamp,
		ExpectFailwith: json.RawMessage(p.ExpectFailwith),
	})
}

func (e *payloadEncoder) VisitAssertAccountBalance(p action.AssertAccountBalancePayload) error {
	return e.marshal(AssertAccountBalanceJSON{
		AccountName: p.AccountName,
		Balance:     p.Balance,
	})
}

func (e *payloadEncoder) VisitAssertContractStorage(p action.AssertContractStoragePayload) error {
	return e.marshal(AssertContractStorageJSON{
		ContractName: p.ContractName,
		Storage:      json.RawMessage(p.Storage),
	})
}

func (e *payloadEncoder) VisitModifyChainID(p action.ModifyChainIDPayload) error {
	return e.marshal(ModifyChainIDJSON{ChainID: p.ChainID})
}

func (e *payloadEncoder) VisitModifyBlockLevel(p action.ModifyBlockLevelPayload) error {
	return e.marshal(ModifyBlockLevelJSON{Level: p.Level})
}

func (e *payloadEncoder) VisitModifyBlockTimestamp(p action.ModifyBlockTimestampPayload) error {
	return e.marshal(ModifyBlockTimestampJSON{Timestamp: p.Timestamp})
}

func (e *payloadEncoder) VisitPackData(p action.PackDataPayload) error {
	return e.marshal(PackDataJSON{
		Data: json.RawMessage(p.Data),
		Type: json.RawMessage(p.Type),
	})
}

// decodePayload unmarshals the payload of the kind. The payload is expected to
// have been validated against the schema of the kind.
func decodePayload(ctx serde.Context, kind action.Kind, raw []byte) (action.Payload, error) {
	switch kind {
	case action.CreateImplicitAccount:
		var m CreateImplicitAccountJSON
		if err := ctx.Unmarshal(raw, &m); err != nil {
			return nil, err
		}

		return action.CreateImplicitAccountPayload{Name: m.Name, Balance: m.Balance}, nil
	case action.OriginateContract:
		var m OriginateContractJSON
		if err := ctx.Unmarshal(raw, &m); err != nil {
			return nil, err
		}

		code, err := toData(m.Code)
		if err != nil {
			return nil, err
		}

		storage, err := toData(m.Storage)
		if err != nil {
			return nil, err
		}

		p := action.OriginateContractPayload{
			Name:    m.Name,
			Balance: m.Balance,
			Code:    code,
			Storage: storage,
		}

		return p, nil
	case action.CallContract:
		var m CallContractJSON
		if err := ctx.Unmarshal(raw, &m); err != nil {
			return nil, err
		}

		parameter, err := toData(m.Parameter)
		if err != nil {
			return nil, err
		}

		failwith, err := toData(m.ExpectFailwith)
		if err != nil {
			return nil, err
		}

		p := action.CallContractPayload{
			Recipient:      m.Recipient,
			Sender:         m.Sender,
			Amount:         m.Amount,
			Entrypoint:     m.Entrypoint,
			Parameter:      parameter,
			Level:          m.Level,
			Timestamp:      m.Timestamp,
			ExpectFailwith: failwith,
		}

		return p, nil
	case action.AssertAccountBalance:
		var m AssertAccountBalanceJSON
		if err := ctx.Unmarshal(raw, &m); err != nil {
			return nil, err
		}

		return action.AssertAccountBalancePayload{AccountName: m.AccountName, Balance: m.Balance}, nil
	case action.AssertContractStorage:
		var m AssertContractStorageJSON
		if err := ctx.Unmarshal(raw, &m); err != nil {
			return nil, err
		}

		storage, err := toData(m.Storage)
		if err != nil {
			return nil, err
		}

		return action.AssertContractStoragePayload{ContractName: m.ContractName, Storage: storage}, nil
	case action.ModifyChainID:
		var m ModifyChainIDJSON
		if err := ctx.Unmarshal(raw, &m); err != nil {
			return nil, err
		}

		return action.ModifyChainIDPayload{ChainID: m.ChainID}, nil
	case action.ModifyBlockLevel:
		var m ModifyBlockLevelJSON
		if err := ctx.Unmarshal(raw, &m); err != nil {
			return nil, err
		}

		return action.ModifyBlockLevelPayload{Level: m.Level}, nil
	case action.ModifyBlockTimestamp:
		var m ModifyBlockTimestampJSON
		if err := ctx.Unmarshal(raw, &m); err != nil {
			return nil, err
		}

		return action.ModifyBlockTimestampPayload{Timestamp: m.Timestamp}, nil
	case action.PackData:
		var m PackDataJSON
		if err := ctx.Unmarshal(raw, &m); err != nil {
			return nil, err
		}

		value, err := toData(m.Data)
		if err != nil {
			return nil, err
		}

		typ, err := toData(m.Type)
		if err != nil {
			return nil, err
		}

		return action.PackDataPayload{Data: value, Type: typ}, nil
	default:
		return nil, xerrors.Errorf("kind '%s' has no payload decoder", kind)
	}
}

// toData converts an optional raw message to structured data.
func toData(raw json.RawMessage) (action.Data, error) {
	if raw == nil {
		return nil, nil
	}

	return action.ParseData(raw)
}
