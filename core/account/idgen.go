package account

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

var nowFunc = time.Now // mockable

// NewStudentNo generates a human-readable student id of the form STU<YY>-####.
// The 4-digit suffix is random and is NOT checked against existing ids;
// the hash uniqueness index is the only enforced uniqueness.
func NewStudentNo() string {
	return fmt.Sprintf("STU%s-%s", nowFunc().UTC().Format("06"), randDigits(4))
}

// NewAdminNo generates a human-readable admin id of the form AD-####.
func NewAdminNo() string {
	return fmt.Sprintf("AD-%s", randDigits(4))
}

// AdminCodeMatches reports whether code matches the last 4 characters of the
// admin's AD-#### id.
func AdminCodeMatches(adminNo, code string) bool {
	if len(adminNo) < 4 || len(code) != 4 {
		return false
	}
	return strings.HasSuffix(adminNo, code)
}

func randDigits(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			// crypto/rand only fails when the platform source is broken
			sb.WriteByte('0')
			continue
		}
		sb.WriteByte(byte('0' + d.Int64()))
	}
	return sb.String()
}
