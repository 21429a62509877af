package models

import (
	"sync/atomic"
	"time"

	"github.com/jxskiss/base62"
)

var idSeq uint32

// NewID 生成一个带前缀的短标识符，如 "plan-4fY2kQx1"。
// 毫秒时间戳左移后拼上进程内递增序号，再做 base62 编码，
// 保证同一毫秒内生成的 ID 也不会冲突。
func NewID(prefix string) string {
	seq := atomic.AddUint32(&idSeq, 1)
	raw := uint64(time.Now().UnixMilli())<<16 | uint64(seq&0xffff)
	return prefix + "-" + string(base62.FormatUint(raw))
}
