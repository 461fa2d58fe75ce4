package json

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sctester/scenario"
	"github.com/sctester/scenario/action"
	_ "github.com/sctester/scenario/action/json"
	"github.com/sctester/scenario/internal/testing/fake"
	"github.com/sctester/scenario/serde"
	"github.com/sctester/scenario/suite"
	"github.com/stretchr/testify/require"
)

const aliceSuite = `{"protocol":"PtHangz2","actions":[` +
	`{"kind":"create_implicit_account","payload":{"name":"alice","balance":"1000000"}},` +
	`{"kind":"assert_account_balance","payload":{"account_name":"alice","balance":"1000000"}}]}`

func TestSuiteFormat_Encode(t *testing.T) {
	format := suiteFormat{}
	ctx := fake.NewContext()

	data, err := format.Encode(ctx, makeSuite(t))
	require.NoError(t, err)
	require.Equal(t, aliceSuite, string(data))

	data, err = format.Encode(ctx, suite.NewTestSuite())
	require.NoError(t, err)
	require.Equal(t, `{"actions":[]}`, string(data))

	_, err = format.Encode(ctx, fake.Message{})
	require.EqualError(t, err, "unsupported message of type 'fake.Message'")

	_, err = format.Encode(ctx, suite.NewTestSuite(suite.WithActions(action.Action{})))
	require.EqualError(t, err, "failed to serialize action #0: failed to encode: "+
		"failed to encode payload: action has no payload: shape mismatch")

	_, err = format.Encode(fake.NewBadContext(), suite.NewTestSuite())
	require.EqualError(t, err, fake.Err("failed to marshal"))
}

func TestSuiteFormat_Decode(t *testing.T) {
	ctx := fake.NewContext()
	factory := suite.NewFactory()

	s, err := factory.SuiteOf(ctx, []byte(aliceSuite))
	require.NoError(t, err)
	require.Equal(t, makeSuite(t), s)

	s, err = factory.SuiteOf(ctx, []byte(`{"actions":[]}`))
	require.NoError(t, err)
	require.Equal(t, suite.NewTestSuite(), s)

	_, err = suiteFormat{}.Decode(ctx, []byte(aliceSuite))
	require.EqualError(t, err, "invalid action factory '<nil>'")
}

func TestSuiteFormat_Decode_Logs(t *testing.T) {
	prev := scenario.Logger
	defer func() { scenario.Logger = prev }()

	logger, check := fake.CheckLog("suite decoded")
	scenario.Logger = logger

	_, err := suite.NewFactory().SuiteOf(fake.NewContext(), []byte(aliceSuite))
	require.NoError(t, err)
	check(t)
}

func TestSuiteFormat_Decode_Invalid(t *testing.T) {
	ctx := fake.NewContext()
	factory := suite.NewFactory()

	_, err := factory.SuiteOf(ctx, []byte(`{"actions":`))
	require.True(t, errors.Is(err, action.ErrShapeMismatch))
	require.EqualError(t, err, "failed to decode: invalid JSON: shape mismatch")

	_, err = factory.SuiteOf(ctx, []byte(`"suite"`))
	require.EqualError(t, err,
		"failed to decode: expected an object or an array: shape mismatch")

	_, err = factory.SuiteOf(ctx, []byte(`{"protocol":"PtHangz2"}`))
	require.True(t, errors.Is(err, action.ErrShapeMismatch))
	require.EqualError(t, err,
		"failed to decode: suite misses the 'actions' array: shape mismatch")

	_, err = factory.SuiteOf(ctx, []byte(`{"actions":{}}`))
	require.True(t, errors.Is(err, action.ErrShapeMismatch))

	_, err = factory.SuiteOf(ctx, []byte(`{"protocol":1,"actions":[]}`))
	require.EqualError(t, err,
		"failed to decode: suite protocol must be a string: shape mismatch")

	_, err = factory.SuiteOf(ctx, []byte(`{"actions":[`+
		`{"kind":"create_implicit_account","payload":{"name":"alice","balance":"1"}},`+
		`{"kind":"transfer","payload":{}}]}`))
	require.True(t, errors.Is(err, action.ErrUnknownKind))
	require.Contains(t, err.Error(), "action #1: ")

	_, err = factory.SuiteOf(ctx, []byte(`{"actions":[`+
		`{"kind":"create_implicit_account","payload":{"name":"alice"}}]}`))
	require.True(t, errors.Is(err, action.ErrShapeMismatch))
	require.Contains(t, err.Error(), "action #0: ")

	_, err = factory.SuiteOf(fake.NewBadContext(), []byte(`{"actions":[]}`))
	require.EqualError(t, err, fake.Err("failed to decode: failed to unmarshal"))

	_, err = suite.NewFactoryWithActions(badActionFactory{}).SuiteOf(ctx, []byte(aliceSuite))
	require.EqualError(t, err, fake.Err("failed to decode: action #0"))
}

func TestSuite_Fingerprint(t *testing.T) {
	ctx := fake.NewContext()

	buffer := new(bytes.Buffer)
	err := makeSuite(t).Fingerprint(ctx, buffer)
	require.NoError(t, err)
	require.Equal(t, `{"actions":[`+
		`{"kind":"create_implicit_account","payload":{"balance":"1000000","name":"alice"}},`+
		`{"kind":"assert_account_balance","payload":{"account_name":"alice","balance":"1000000"}}],`+
		`"protocol":"PtHangz2"}`, buffer.String())

	first := makeStorageSuite(t, `{"prim":"Pair","args":[{"int":"1"},{"string":"a"}]}`)
	second := makeStorageSuite(t, `{"args":[{"int":"1"},{"string":"a"}],"prim":"Pair"}`)
	third := makeStorageSuite(t, `{"prim":"Pair","args":[{"string":"a"},{"int":"1"}]}`)

	d1, err := suite.Digest(ctx, first)
	require.NoError(t, err)
	require.Len(t, d1, 32)

	d2, err := suite.Digest(ctx, second)
	require.NoError(t, err)
	require.Equal(t, d1, d2)

	d3, err := suite.Digest(ctx, third)
	require.NoError(t, err)
	require.NotEqual(t, d1, d3)
}

func TestSuite_Fingerprint_Levels(t *testing.T) {
	ctx := fake.NewContext()

	buffer := new(bytes.Buffer)
	err := makeLevelSuite(t, action.MaxLevel).Fingerprint(ctx, buffer)
	require.NoError(t, err)
	require.Equal(t, `{"actions":[{"kind":"modify_block_level","payload":`+
		`{"level":9007199254740991}}]}`, buffer.String())

	d1, err := suite.Digest(ctx, makeLevelSuite(t, action.MaxLevel))
	require.NoError(t, err)

	d2, err := suite.Digest(ctx, makeLevelSuite(t, action.MaxLevel-1))
	require.NoError(t, err)
	require.NotEqual(t, d1, d2)

	d3, err := suite.Digest(ctx, makeLevelSuite(t, -action.MaxLevel))
	require.NoError(t, err)
	require.NotEqual(t, d1, d3)
}

func TestResultsFormat_Encode(t *testing.T) {
	format := suiteFormat{}

	results := suite.Results{
		makeResult(t, suite.Success, action.CreateImplicitAccount,
			suite.WithAction(action.MustParseData(`{"name":"alice","balance":"1000000"}`)),
			suite.WithResult(map[string]interface{}{"address": "tz1abc"})),
		makeResult(t, suite.Failure, action.AssertAccountBalance),
	}

	data, err := format.Encode(fake.NewContext(), results)
	require.NoError(t, err)
	require.Equal(t, `[`+
		`{"status":"success","kind":"create_implicit_account",`+
		`"action":{"name":"alice","balance":"1000000"},"result":{"address":"tz1abc"}},`+
		`{"status":"failure","kind":"assert_account_balance"}]`, string(data))

	data, err = format.Encode(fake.NewContext(), suite.Results{})
	require.NoError(t, err)
	require.Equal(t, `[]`, string(data))
}

func TestResultsFormat_Decode(t *testing.T) {
	ctx := fake.NewContext()
	factory := suite.NewResultsFactory()

	results, err := factory.ResultsOf(ctx, []byte(`[`+
		`{"status":"success","kind":"create_implicit_account","result":{"address":"tz1abc"}},`+
		`{"status":"failure","action":{"kind":"assert_account_balance","payload":{}}},`+
		`{"status":"success","kind":"modify_chain_id","action":null}]`))
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.Equal(t, suite.Success, results[0].GetStatus())
	require.Equal(t, action.CreateImplicitAccount, results[0].GetKind())
	require.Equal(t, map[string]interface{}{"address": "tz1abc"}, results[0].GetResult())
	require.Nil(t, results[0].GetAction())

	require.Equal(t, suite.Failure, results[1].GetStatus())
	require.Equal(t, action.AssertAccountBalance, results[1].GetKind())
	require.Equal(t, `{"kind":"assert_account_balance","payload":{}}`, results[1].GetAction().String())

	require.Equal(t, action.ModifyChainID, results[2].GetKind())
	require.Nil(t, results[2].GetAction())
}

func TestResultsFormat_Decode_Invalid(t *testing.T) {
	ctx := fake.NewContext()
	factory := suite.NewResultsFactory()

	_, err := factory.ResultsOf(ctx, []byte(`[{"status":"skipped","kind":"pack_data"}]`))
	require.EqualError(t, err, "failed to decode: result #0: invalid status 'skipped'")

	_, err = factory.ResultsOf(ctx, []byte(`[{"status":"success"}]`))
	require.True(t, errors.Is(err, action.ErrShapeMismatch))
	require.EqualError(t, err, "failed to decode: result #0: result misses its kind: shape mismatch")

	_, err = factory.ResultsOf(ctx, []byte(`[{"status":"success","kind":"transfer"}]`))
	require.True(t, errors.Is(err, action.ErrUnknownKind))

	_, err = factory.ResultsOf(ctx, []byte(`[{"status":"success","kind":"pack_data","action":"x"}]`))
	require.True(t, errors.Is(err, action.ErrShapeMismatch))
	require.Contains(t, err.Error(), "result #0: invalid action: ")

	_, err = factory.ResultsOf(ctx, []byte(`[{"status":1}]`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to decode: failed to unmarshal: ")

	_, err = factory.ResultsOf(fake.NewBadContext(), []byte(`[]`))
	require.EqualError(t, err, fake.Err("failed to decode: failed to unmarshal"))
}

func TestResults_RoundTrip(t *testing.T) {
	ctx := fake.NewContext()

	results := suite.Results{
		makeResult(t, suite.Success, action.PackData,
			suite.WithResult(map[string]interface{}{"packed": "0x05"})),
	}

	data, err := results.Serialize(ctx)
	require.NoError(t, err)

	decoded, err := suite.NewResultsFactory().ResultsOf(ctx, data)
	require.NoError(t, err)
	require.Equal(t, results, decoded)

	_, err = suite.Correlate(suite.NewTestSuite(), decoded)
	require.True(t, errors.Is(err, suite.ErrCorrelation))
}

// -----------------------------------------------------------------------------
// Utility functions

func makeSuite(t *testing.T) suite.TestSuite {
	create, err := action.NewCreateImplicitAccount(action.CreateImplicitAccountPayload{
		Name:    "alice",
		Balance: "1000000",
	})
	require.NoError(t, err)

	assert, err := action.NewAssertAccountBalance(action.AssertAccountBalancePayload{
		AccountName: "alice",
		Balance:     "1000000",
	})
	require.NoError(t, err)

	return suite.NewTestSuite(suite.WithProtocol("PtHangz2"), suite.WithActions(create, assert))
}

func makeStorageSuite(t *testing.T, storage string) suite.TestSuite {
	act, err := action.NewAssertContractStorage(action.AssertContractStoragePayload{
		ContractName: "counter",
		Storage:      action.MustParseData(storage),
	})
	require.NoError(t, err)

	return suite.NewTestSuite(suite.WithActions(act))
}

func makeLevelSuite(t *testing.T, level int64) suite.TestSuite {
	act, err := action.NewModifyBlockLevel(action.ModifyBlockLevelPayload{Level: level})
	require.NoError(t, err)

	return suite.NewTestSuite(suite.WithActions(act))
}

func makeResult(t *testing.T, status suite.Status, kind action.Kind,
	opts ...suite.ResultOption) suite.ActionResult {

	res, err := suite.NewActionResult(status, kind, opts...)
	require.NoError(t, err)

	return res
}

type badActionFactory struct{}

func (badActionFactory) Deserialize(serde.Context, []byte) (serde.Message, error) {
	return nil, fake.GetError()
}

func (badActionFactory) ActionOf(serde.Context, []byte) (action.Action, error) {
	return action.Action{}, fake.GetError()
}
