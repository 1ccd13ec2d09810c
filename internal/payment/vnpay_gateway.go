package payment

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"storefront-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	vnpVersion       = "2.1.0"
	vnpCommand       = "pay"
	vnpCurrency      = "VND"
	vnpLocale        = "vn"
	vnpOrderType     = "other"
	vnpDateLayout    = "20060102150405"
	vnpExpiry        = 15 * time.Minute
	vnpSuccessCode   = "00"
	vnpHashParam     = "vnp_SecureHash"
	vnpHashTypeParam = "vnp_SecureHashType"
)

type VNPayConfig struct {
	PayURL     string
	ReturnURL  string
	TmnCode    string
	HashSecret string
}

type VNPayGateway struct {
	cfg VNPayConfig
	loc *time.Location
	now func() time.Time
}

// ----------------- Constructor -----------------

func NewVNPayGateway(cfg VNPayConfig) *VNPayGateway {
	if cfg.HashSecret == "" {
		logger.L().Warn("VNPay hash secret is empty")
	}

	return &VNPayGateway{
		cfg: cfg,
		loc: time.FixedZone("GMT+7", 7*60*60),
		now: time.Now,
	}
}

func (g *VNPayGateway) Provider() Provider {
	return ProviderVNPay
}

// ----------------- BuildPaymentURL -----------------

// BuildPaymentURL returns the signed redirect URL for paying amount (VND)
// against orderID. The link expires after 15 minutes.
func (g *VNPayGateway) BuildPaymentURL(orderID int64, orderNumber string, amount decimal.Decimal, clientIP string) (string, error) {
	if amount.IsNegative() || amount.IsZero() {
		return "", ErrInvalidCallback.WithMessage("payment amount must be positive")
	}

	created := g.now().In(g.loc)
	params := url.Values{}
	params.Set("vnp_Version", vnpVersion)
	params.Set("vnp_Command", vnpCommand)
	params.Set("vnp_TmnCode", g.cfg.TmnCode)
	params.Set("vnp_Amount", amount.Mul(decimal.NewFromInt(100)).Truncate(0).String())
	params.Set("vnp_CurrCode", vnpCurrency)
	params.Set("vnp_TxnRef", strconv.FormatInt(orderID, 10))
	params.Set("vnp_OrderInfo", "Thanh toan don hang "+orderNumber)
	params.Set("vnp_OrderType", vnpOrderType)
	params.Set("vnp_Locale", vnpLocale)
	params.Set("vnp_ReturnUrl", g.cfg.ReturnURL)
	params.Set("vnp_IpAddr", clientIP)
	params.Set("vnp_CreateDate", created.Format(vnpDateLayout))
	params.Set("vnp_ExpireDate", created.Add(vnpExpiry).Format(vnpDateLayout))

	query := canonicalQuery(params)
	signed := query + "&" + vnpHashParam + "=" + sign(g.cfg.HashSecret, query)

	return g.cfg.PayURL + "?" + signed, nil
}

// ----------------- ParseCallback -----------------

func (g *VNPayGateway) ParseCallback(r *http.Request) (*Outcome, error) {
	if err := r.ParseForm(); err != nil {
		return nil, ErrInvalidCallback.WithMessage("malformed callback: %v", err)
	}
	return g.Verify(r.Form)
}

// Verify checks the secure hash over every vnp_ parameter and extracts the
// outcome. vnp_ResponseCode "00" is a successful payment.
func (g *VNPayGateway) Verify(values url.Values) (*Outcome, error) {
	log := logger.L().With(
		zap.String("layer", "payment"),
		zap.String("provider", string(ProviderVNPay)),
		zap.String("txn_ref", values.Get("vnp_TxnRef")),
	)

	got := values.Get(vnpHashParam)
	if got == "" {
		return nil, ErrInvalidSignature.WithMessage("missing %s", vnpHashParam)
	}

	fields := url.Values{}
	for k, v := range values {
		if !strings.HasPrefix(k, "vnp_") || k == vnpHashParam || k == vnpHashTypeParam {
			continue
		}
		fields[k] = v
	}

	want := sign(g.cfg.HashSecret, canonicalQuery(fields))
	if !hmac.Equal([]byte(strings.ToLower(got)), []byte(want)) {
		log.Warn("vnpay signature mismatch")
		return nil, ErrInvalidSignature
	}

	orderID, err := strconv.ParseInt(values.Get("vnp_TxnRef"), 10, 64)
	if err != nil || orderID <= 0 {
		return nil, ErrInvalidCallback.WithMessage("invalid vnp_TxnRef %q", values.Get("vnp_TxnRef"))
	}

	code := values.Get("vnp_ResponseCode")
	payload, err := json.Marshal(flatten(fields))
	if err != nil {
		return nil, fmt.Errorf("marshal vnpay payload: %w", err)
	}

	eventID := values.Get("vnp_TransactionNo")
	if eventID == "" || eventID == "0" {
		eventID = fmt.Sprintf("%d:%s:%s", orderID, code, values.Get("vnp_PayDate"))
	}

	return &Outcome{
		Provider:  ProviderVNPay,
		EventID:   eventID,
		EventType: "response_code_" + code,
		OrderID:   orderID,
		Success:   code == vnpSuccessCode,
		Payload:   payload,
	}, nil
}

// canonicalQuery joins non-empty params sorted by key, each value
// form-encoded. VNPay signs exactly this string.
func canonicalQuery(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if params.Get(k) != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params.Get(k)))
	}
	return b.String()
}

func sign(secret, data string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

func flatten(values url.Values) map[string]string {
	out := make(map[string]string, len(values))
	for k := range values {
		out[k] = values.Get(k)
	}
	return out
}

var errIncompleteConfig = errors.New("vnpay: tmn code and hash secret are required")

// Validate reports whether the gateway can sign requests.
func (c VNPayConfig) Validate() error {
	if c.HashSecret == "" || c.TmnCode == "" {
		return errIncompleteConfig
	}
	return nil
}
