package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// NewID returns a random UUID v4 string, used as the primary key for all
// persisted entities.
func NewID() string {
	return uuid.NewString()
}

// GeneratePaymentID mints ids like pay_1724832000_042137 for the simulated
// payment processor.
func GeneratePaymentID() string {
	timestamp := time.Now().Unix()
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(999999))
	return fmt.Sprintf("pay_%d_%06d", timestamp, randomNum.Int64())
}

func GenerateTransactionID() string {
	timestamp := time.Now().Unix()
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(999999999))
	return fmt.Sprintf("txn_%d_%09d", timestamp, randomNum.Int64())
}
