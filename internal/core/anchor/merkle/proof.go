// Package merkle 提供基于MiMC的Merkle包含性证明校验
//
// 透明模式下锚定的状态根被视为源链状态Merkle树的根，
// 客户端可凭兄弟路径证明某个叶子包含在已锚定的状态中。
package merkle

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/ethereum/go-ethereum/common"

	"github.com/rayls/eth-anchor/pkg/types"
)

// hashPair 计算一层父节点哈希 MiMC(left, right)
func hashPair(left, right common.Hash) common.Hash {
	h := mimc.NewMiMC()
	for _, in := range [][]byte{left[:], right[:]} {
		var elem fr.Element
		elem.SetBigInt(new(big.Int).SetBytes(in))
		b := elem.Bytes()
		h.Write(b[:])
	}
	return common.BytesToHash(h.Sum(nil))
}

// ComputeRoot 由叶子和兄弟路径计算Merkle根
//
// Index 的第i位决定第i层的拼接顺序：0=当前节点在左，1=在右。
func ComputeRoot(proof types.MembershipProof) common.Hash {
	node := proof.Leaf
	index := proof.Index
	for _, sibling := range proof.Siblings {
		if index&1 == 0 {
			node = hashPair(node, sibling)
		} else {
			node = hashPair(sibling, node)
		}
		index >>= 1
	}
	return node
}

// Verify 校验包含性证明是否归约到给定的根
func Verify(root common.Hash, proof types.MembershipProof) bool {
	return ComputeRoot(proof) == root
}

// BuildTree 由叶子集合构建完整的Merkle树层级（自底向上）
//
// 奇数个节点时最后一个节点与自身配对。返回的层级中
// levels[0] 是叶子层，最后一层只含根。
func BuildTree(leaves []common.Hash) [][]common.Hash {
	if len(leaves) == 0 {
		return nil
	}

	levels := [][]common.Hash{leaves}
	current := leaves
	for len(current) > 1 {
		next := make([]common.Hash, 0, (len(current)+1)/2)
		for i := 0; i < len(current); i += 2 {
			left := current[i]
			right := left
			if i+1 < len(current) {
				right = current[i+1]
			}
			next = append(next, hashPair(left, right))
		}
		levels = append(levels, next)
		current = next
	}
	return levels
}

// ProofForLeaf 为指定叶子生成包含性证明
func ProofForLeaf(levels [][]common.Hash, leafIndex uint64) types.MembershipProof {
	proof := types.MembershipProof{
		Leaf:  levels[0][leafIndex],
		Index: leafIndex,
	}

	index := leafIndex
	for _, level := range levels[:len(levels)-1] {
		siblingIndex := index ^ 1
		if siblingIndex >= uint64(len(level)) {
			siblingIndex = index // 奇数层末尾与自身配对
		}
		proof.Siblings = append(proof.Siblings, level[siblingIndex])
		index >>= 1
	}
	return proof
}
