package cache

import (
	"fmt"
)

type EntityType string

const (
	EntityBalances EntityType = "balances"
)

type KeyType string

const (
	KeyUser       KeyType = "user"
	KeyGeneration KeyType = "gen"
)

// GenerateKey creates a standardized cache key
func GenerateKey(entity EntityType, keyType KeyType, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entity, keyType, value)
}

// BalancesKey holds the cached balance list of one user.
func BalancesKey(userID uint) string {
	return GenerateKey(EntityBalances, KeyUser, userID)
}

// BalancesGenerationKey is bumped on every eviction of BalancesKey(userID).
func BalancesGenerationKey(userID uint) string {
	return GenerateKey(EntityBalances, KeyGeneration, userID)
}
