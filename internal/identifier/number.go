package identifier

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/mimimart/checkout/internal/domain"
)

// NumberGenerator produces business numbers shaped as
// prefix + yyyyMMddHHmmss + three random digits. The clock and random
// source are injected so tests can pin both.
type NumberGenerator struct {
	mu  sync.Mutex
	now func() time.Time
	rnd *rand.Rand
}

func NewNumberGenerator(now func() time.Time, rnd *rand.Rand) *NumberGenerator {
	if now == nil {
		now = time.Now
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &NumberGenerator{now: now, rnd: rnd}
}

func (g *NumberGenerator) next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fmt.Sprintf("%s%s%03d", prefix, g.now().Format("20060102150405"), g.rnd.Intn(1000))
}

func (g *NumberGenerator) NextOrderNumber() (domain.OrderNumber, error) {
	return domain.ParseOrderNumber(g.next(domain.OrderNumberPrefix))
}

func (g *NumberGenerator) NextPaymentNumber() (domain.PaymentNumber, error) {
	return domain.ParsePaymentNumber(g.next(domain.PaymentNumberPrefix))
}
