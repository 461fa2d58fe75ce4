package action

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKinds(t *testing.T) {
	kinds := Kinds()
	require.Equal(t, []Kind{
		"create_implicit_account",
		"originate_contract",
		"call_contract",
		"assert_account_balance",
		"assert_contract_storage",
		"modify_chain_id",
		"modify_block_level",
		"modify_block_timestamp",
		"pack_data",
	}, kinds)

	seen := map[string]struct{}{}
	for _, k := range kinds {
		_, found := seen[k.String()]
		require.False(t, found, k)
		seen[k.String()] = struct{}{}
	}

	kinds[0] = "tampered"
	require.Equal(t, CreateImplicitAccount, Kinds()[0])
}

func TestKind_Valid(t *testing.T) {
	require.True(t, PackData.Valid())
	require.False(t, Kind("PACK_DATA").Valid())
	require.False(t, Kind("").Valid())
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		parsed, err := ParseKind(string(k))
		require.NoError(t, err)
		require.Equal(t, k, parsed)
	}

	_, err := ParseKind("not_a_real_kind")
	require.True(t, errors.Is(err, ErrUnknownKind))
	require.EqualError(t, err, "invalid kind 'not_a_real_kind': unknown action kind")
}
