package merkle

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeLeaves(n int) []common.Hash {
	leaves := make([]common.Hash, n)
	for i := range leaves {
		leaves[i] = common.BigToHash(big.NewInt(int64(i) + 1000))
	}
	return leaves
}

func TestProofRoundTrip(t *testing.T) {
	// 覆盖单叶、偶数、奇数与跨多层的叶子数
	for _, n := range []int{1, 2, 3, 4, 5, 8, 13} {
		t.Run(fmt.Sprintf("%d个叶子", n), func(t *testing.T) {
			leaves := makeLeaves(n)
			levels := BuildTree(leaves)
			require.NotEmpty(t, levels)
			root := levels[len(levels)-1][0]
			require.Len(t, levels[len(levels)-1], 1)

			for i := 0; i < n; i++ {
				proof := ProofForLeaf(levels, uint64(i))
				assert.True(t, Verify(root, proof), "叶子 %d 的证明应当通过", i)
			}
		})
	}
}

func TestProofRejection(t *testing.T) {
	leaves := makeLeaves(8)
	levels := BuildTree(leaves)
	root := levels[len(levels)-1][0]

	t.Run("篡改叶子", func(t *testing.T) {
		proof := ProofForLeaf(levels, 3)
		proof.Leaf = common.BigToHash(big.NewInt(9999))
		assert.False(t, Verify(root, proof))
	})

	t.Run("篡改兄弟路径", func(t *testing.T) {
		proof := ProofForLeaf(levels, 3)
		proof.Siblings[1] = common.BigToHash(big.NewInt(9999))
		assert.False(t, Verify(root, proof))
	})

	t.Run("错误的叶子位置", func(t *testing.T) {
		proof := ProofForLeaf(levels, 3)
		proof.Index = 4
		assert.False(t, Verify(root, proof))
	})

	t.Run("错误的根", func(t *testing.T) {
		proof := ProofForLeaf(levels, 3)
		assert.False(t, Verify(common.BigToHash(big.NewInt(1)), proof))
	})
}

func TestBuildTree(t *testing.T) {
	t.Run("空叶子集合返回nil", func(t *testing.T) {
		assert.Nil(t, BuildTree(nil))
	})

	t.Run("单叶树的根即叶子", func(t *testing.T) {
		leaves := makeLeaves(1)
		levels := BuildTree(leaves)
		require.Len(t, levels, 1)
		assert.Equal(t, leaves[0], levels[0][0])

		proof := ProofForLeaf(levels, 0)
		assert.Empty(t, proof.Siblings)
		assert.True(t, Verify(leaves[0], proof))
	})

	t.Run("哈希拼接顺序敏感", func(t *testing.T) {
		a := common.BigToHash(big.NewInt(1))
		b := common.BigToHash(big.NewInt(2))
		assert.NotEqual(t, hashPair(a, b), hashPair(b, a))
	})
}
