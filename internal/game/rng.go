package game

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
)

// ========== 随机数生成器 ==========

var randPool = &sync.Pool{
	New: func() any {
		var seed [16]byte
		_, _ = cryptoRand.Read(seed[:])
		hi := binary.LittleEndian.Uint64(seed[:8])
		lo := binary.LittleEndian.Uint64(seed[8:])
		return rand.New(rand.NewPCG(hi, lo))
	},
}

// AcquireRand 从池中取随机源，用完 ReleaseRand 归还
func AcquireRand() *rand.Rand {
	return randPool.Get().(*rand.Rand)
}

func ReleaseRand(r *rand.Rand) {
	randPool.Put(r)
}
