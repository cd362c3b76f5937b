package orders

import (
	"encoding/base32"
	"strings"
	"time"

	"github.com/google/uuid"
)

const orderNumberPrefix = "NUR"

var orderNumberEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewOrderNumber returns a customer-facing order number such as
// NUR-20260301-K3F9QX.
func NewOrderNumber(now time.Time) string {
	id := uuid.New()
	suffix := orderNumberEncoding.EncodeToString(id[:5])[:6]
	return orderNumberPrefix + "-" + now.UTC().Format("20060102") + "-" + strings.ToUpper(suffix)
}
