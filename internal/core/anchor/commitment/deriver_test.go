package commitment

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayls/eth-anchor/pkg/types"
)

func TestDerive(t *testing.T) {
	d := New()

	stateRoot := new(big.Int).SetBytes(common.HexToHash("0xdeadbeef").Bytes())
	blockNumber := big.NewInt(100)
	validatorID := big.NewInt(1)
	salt := big.NewInt(424242)

	t.Run("相同输入产生相同承诺", func(t *testing.T) {
		c1, err := d.Derive(stateRoot, blockNumber, validatorID, salt)
		require.NoError(t, err)
		c2, err := d.Derive(stateRoot, blockNumber, validatorID, salt)
		require.NoError(t, err)
		assert.Equal(t, c1, c2)
	})

	t.Run("任一输入变化承诺即变化", func(t *testing.T) {
		base, err := d.Derive(stateRoot, blockNumber, validatorID, salt)
		require.NoError(t, err)

		variants := [][4]*big.Int{
			{big.NewInt(999), blockNumber, validatorID, salt},
			{stateRoot, big.NewInt(101), validatorID, salt},
			{stateRoot, blockNumber, big.NewInt(2), salt},
			{stateRoot, blockNumber, validatorID, big.NewInt(424243)},
		}
		for i, v := range variants {
			c, err := d.Derive(v[0], v[1], v[2], v[3])
			require.NoError(t, err)
			assert.NotEqual(t, base, c, "变体 %d 应产生不同承诺", i)
		}
	})

	t.Run("吸收顺序敏感", func(t *testing.T) {
		c1, err := d.Derive(big.NewInt(7), big.NewInt(8), validatorID, salt)
		require.NoError(t, err)
		c2, err := d.Derive(big.NewInt(8), big.NewInt(7), validatorID, salt)
		require.NoError(t, err)
		assert.NotEqual(t, c1, c2)
	})

	t.Run("承诺落在标量域内", func(t *testing.T) {
		c, err := d.Derive(stateRoot, blockNumber, validatorID, salt)
		require.NoError(t, err)
		assert.True(t, c.Cmp(Modulus()) < 0)
		assert.True(t, c.Sign() >= 0)
	})

	t.Run("超域输入按模数归约", func(t *testing.T) {
		// 2^256-1 超出BN254标量域，应与其模归约值产生相同承诺
		huge := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
		reduced := new(big.Int).Mod(huge, Modulus())

		c1, err := d.Derive(huge, blockNumber, validatorID, salt)
		require.NoError(t, err)
		c2, err := d.Derive(reduced, blockNumber, validatorID, salt)
		require.NoError(t, err)
		assert.Equal(t, c1, c2)
	})

	t.Run("nil输入报错", func(t *testing.T) {
		_, err := d.Derive(nil, blockNumber, validatorID, salt)
		assert.ErrorIs(t, err, ErrNilInput)
		_, err = d.Derive(stateRoot, blockNumber, validatorID, nil)
		assert.ErrorIs(t, err, ErrNilInput)
	})

	t.Run("负数输入报错", func(t *testing.T) {
		_, err := d.Derive(big.NewInt(-1), blockNumber, validatorID, salt)
		assert.ErrorIs(t, err, ErrNegativeInput)
	})
}

func TestDeriveFromEvent(t *testing.T) {
	d := New()

	ev := types.SourceCommitEvent{
		StateRoot:   common.BigToHash(big.NewInt(12345)),
		BlockNumber: 100,
	}
	validatorID := big.NewInt(1)
	salt := big.NewInt(7)

	fromEvent, err := d.DeriveFromEvent(ev, validatorID, salt)
	require.NoError(t, err)

	direct, err := d.Derive(
		new(big.Int).SetBytes(ev.StateRoot[:]),
		new(big.Int).SetUint64(ev.BlockNumber),
		validatorID, salt,
	)
	require.NoError(t, err)
	assert.Equal(t, direct, fromEvent)
}
