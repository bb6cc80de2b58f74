package registry

import "errors"

// 提交被拒绝时返回的哨兵错误
//
// 调用方用 errors.Is 区分良性拒绝（已锚定、间隔未到）与
// 需要关注的失败（未授权、证明无效）。
var (
	// ErrPaused 登记处处于暂停状态，提交被拦截
	ErrPaused = errors.New("登记处已暂停")

	// ErrNotAuthorized 提交者不在授权名单中
	ErrNotAuthorized = errors.New("提交者未授权")

	// ErrNotOwner 管理操作的调用者不是所有者
	ErrNotOwner = errors.New("调用者不是所有者")

	// ErrZeroStateRoot 透明提交的状态根为零值
	ErrZeroStateRoot = errors.New("状态根不能为零")

	// ErrZeroCommitment ZK提交的承诺为零值
	ErrZeroCommitment = errors.New("承诺不能为零")

	// ErrNonMonotonic 源链区块号未严格大于当前水位线
	ErrNonMonotonic = errors.New("源链区块号必须严格递增")

	// ErrBlockAlreadyAnchored 指定源链区块已有承诺条目（任一模式）
	ErrBlockAlreadyAnchored = errors.New("源链区块已锚定")

	// ErrIntervalNotElapsed 距上次接受的锚定链区块数不足最小间隔
	ErrIntervalNotElapsed = errors.New("最小提交间隔未满")

	// ErrZKModeDisabled ZK模式未启用
	ErrZKModeDisabled = errors.New("ZK模式未启用")

	// ErrInvalidProof 证明未通过验证
	ErrInvalidProof = errors.New("证明验证未通过")

	// ErrCommitmentNotFound 指定源链区块无透明承诺条目
	ErrCommitmentNotFound = errors.New("未找到承诺条目")

	// ErrNoVerifier ZK提交时验证器未配置
	ErrNoVerifier = errors.New("证明验证器未配置")
)

// IsBenignRejection 判断拒绝是否为良性（中继可安全跳过）
//
// 已锚定与间隔未满属于正常的竞态结果，不需要运维介入。
func IsBenignRejection(err error) bool {
	return errors.Is(err, ErrBlockAlreadyAnchored) ||
		errors.Is(err, ErrNonMonotonic) ||
		errors.Is(err, ErrIntervalNotElapsed)
}
