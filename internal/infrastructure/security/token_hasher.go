package security

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

// SHA256TokenHasher hashes reset tokens for storage. Unlike bcrypt it is
// deterministic, so a presented token can be matched by equality.
type SHA256TokenHasher struct{}

func NewSHA256TokenHasher() SHA256TokenHasher { return SHA256TokenHasher{} }

func (SHA256TokenHasher) Hash(token domain.ResetToken) domain.ResetTokenHash {
	sum := sha256.Sum256([]byte(token))
	return domain.ResetTokenHash(hex.EncodeToString(sum[:]))
}
