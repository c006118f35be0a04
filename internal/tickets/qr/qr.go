package qr

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"time"

	"github.com/skip2/go-qrcode"

	"ms-raffles/internal/models"
)

type QRGenerator struct {
	secret []byte
}

func NewQRGenerator(secret string) *QRGenerator {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &QRGenerator{secret: hashed[:]}
}

// payload is what the verification scanner decrypts: enough to look the
// order up and confirm who bought which numbers.
type payload struct {
	OrderID     string    `json:"order_id"`
	RaffleID    string    `json:"raffle_id"`
	Numbers     []int     `json:"numbers"`
	BuyerCedula string    `json:"buyer_cedula"`
	IssuedAt    time.Time `json:"issued_at"`
}

// GenerateOrderQR encodes an encrypted verification payload for a
// reconciled order as a PNG.
func (q *QRGenerator) GenerateOrderQR(order models.ReconciledOrder) ([]byte, error) {
	data, err := json.Marshal(payload{
		OrderID:     order.OrderID,
		RaffleID:    order.RaffleID,
		Numbers:     order.Numbers,
		BuyerCedula: order.BuyerCedula,
		IssuedAt:    time.Now(),
	})
	if err != nil {
		return nil, err
	}

	encrypted, err := encryptAES(data, q.secret)
	if err != nil {
		return nil, err
	}

	return qrcode.Encode(encrypted, qrcode.Medium, 256)
}

func encryptAES(data []byte, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, aes.BlockSize+len(data))
	iv := ciphertext[:aes.BlockSize]

	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], data)

	return base64.URLEncoding.EncodeToString(ciphertext), nil
}
