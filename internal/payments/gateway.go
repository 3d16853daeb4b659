package payments

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mimimart/checkout/internal/domain"
)

// Gateway builds outbound payment-creation parameters and verifies inbound
// callback checksums, ECPay style: parameters sorted by key, wrapped with
// the hash key and IV, url-encoded, lowercased, SHA256 hashed, uppercased.
// Domain code only ever sees a callback that passed verification.
type Gateway struct {
	merchantID string
	hashKey    string
	hashIV     string
}

var ErrBadChecksum = errors.New("callback checksum verification failed")

func NewGateway(merchantID, hashKey, hashIV string) *Gateway {
	return &Gateway{merchantID: merchantID, hashKey: hashKey, hashIV: hashIV}
}

// BuildCreateParams assembles the gateway trade-creation request for a
// pending payment. The payment number doubles as the merchant trade number
// so callbacks can be routed back to the payment.
func (g *Gateway) BuildCreateParams(p *domain.Payment, description string) map[string]string {
	params := map[string]string{
		"MerchantID":      g.merchantID,
		"MerchantTradeNo": p.Number.String(),
		"TradeAmt":        p.Amount.String(),
		"TradeDesc":       description,
		"PaymentType":     p.Method,
		"ExpireDate":      p.ExpiredAt.Format("2006/01/02 15:04:05"),
	}
	params["CheckMacValue"] = g.checksum(params)
	return params
}

// VerifyCallback checks the CheckMacValue on an inbound callback. It must
// pass before any payment state is touched.
func (g *Gateway) VerifyCallback(form url.Values) error {
	received := form.Get("CheckMacValue")
	if received == "" {
		return fmt.Errorf("missing CheckMacValue: %w", ErrBadChecksum)
	}

	params := make(map[string]string, len(form))
	for key := range form {
		if key == "CheckMacValue" {
			continue
		}
		params[key] = form.Get(key)
	}

	expected := g.checksum(params)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(received)) != 1 {
		return ErrBadChecksum
	}
	return nil
}

// CallbackInfo is the verified, parsed payload of a gateway callback.
type CallbackInfo struct {
	MerchantTradeNo string
	TradeNo         string
	Succeeded       bool
	Amount          domain.Money
	PaidAt          time.Time
}

func ParseCallback(form url.Values) (CallbackInfo, error) {
	amount, err := domain.ParseMoney(form.Get("TradeAmt"))
	if err != nil {
		return CallbackInfo{}, fmt.Errorf("callback TradeAmt: %w", err)
	}

	info := CallbackInfo{
		MerchantTradeNo: form.Get("MerchantTradeNo"),
		TradeNo:         form.Get("TradeNo"),
		Succeeded:       form.Get("RtnCode") == "1",
		Amount:          amount,
	}
	if info.MerchantTradeNo == "" {
		return CallbackInfo{}, errors.New("callback missing MerchantTradeNo")
	}

	if raw := form.Get("PaymentDate"); raw != "" {
		paidAt, err := time.Parse("2006/01/02 15:04:05", raw)
		if err != nil {
			return CallbackInfo{}, fmt.Errorf("callback PaymentDate: %w", err)
		}
		info.PaidAt = paidAt
	}

	return info, nil
}

func (g *Gateway) checksum(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("HashKey=" + g.hashKey)
	for _, key := range keys {
		sb.WriteString("&" + key + "=" + params[key])
	}
	sb.WriteString("&HashIV=" + g.hashIV)

	encoded := strings.ToLower(gatewayEncode(sb.String()))
	sum := sha256.Sum256([]byte(encoded))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// gatewayEncode url-encodes with the gateway's .NET-flavored exceptions.
func gatewayEncode(s string) string {
	encoded := url.QueryEscape(s)
	replacer := strings.NewReplacer(
		"%2D", "-", "%5F", "_", "%2E", ".",
		"%21", "!", "%2A", "*", "%28", "(", "%29", ")",
	)
	return replacer.Replace(encoded)
}
