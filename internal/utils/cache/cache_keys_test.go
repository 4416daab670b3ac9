package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "balances:user:42", BalancesKey(42))
	assert.Equal(t, "balances:gen:42", BalancesGenerationKey(42))
	assert.Equal(t, "balances:user:abc", GenerateKey(EntityBalances, KeyUser, "abc"))
	assert.NotEqual(t, BalancesKey(1), BalancesKey(11))
}
