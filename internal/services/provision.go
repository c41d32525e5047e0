package services

import (
	"context"

	"github.com/tjgf2022/logkeeper-roles-hub/types"
)

// DemoAccount is one of the fixed accounts used for quick login and
// batch provisioning.
type DemoAccount struct {
	Email    string     `json:"email"`
	Password string     `json:"-"`
	Username string     `json:"username"`
	Role     types.Role `json:"role"`
}

// DemoAccounts is the compiled-in registry: one account per role tier.
var DemoAccounts = []DemoAccount{
	{Email: "super@worklog.com", Password: "super601", Username: "张超管", Role: types.RoleSuper},
	{Email: "admin@worklog.com", Password: "admin201", Username: "李管理", Role: types.RoleAdmin},
	{Email: "user@worklog.com", Password: "201201", Username: "王员工", Role: types.RoleUser},
}

// ProvisionResult records the outcome of one registration attempt.
type ProvisionResult struct {
	Account DemoAccount `json:"account"`
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
}

// Provisioner registers the demo accounts against the identity
// gateway.
type Provisioner struct {
	gateway IdentityGateway
}

func NewProvisioner(gateway IdentityGateway) *Provisioner {
	return &Provisioner{gateway: gateway}
}

// ProvisionAll attempts to register every demo account, sequentially
// and in registry order. A failed attempt (typically a duplicate on
// re-invocation) is recorded and does not abort the batch, so the
// result always has one entry per account, in input order.
func (p *Provisioner) ProvisionAll(ctx context.Context) []ProvisionResult {
	results := make([]ProvisionResult, 0, len(DemoAccounts))
	for _, account := range DemoAccounts {
		_, err := p.gateway.SignUp(ctx, account.Email, account.Password, SignUpMeta{
			Username: account.Username,
			Role:     account.Role,
		})
		result := ProvisionResult{Account: account, Success: err == nil}
		if err != nil {
			result.Error = err.Error()
		}
		results = append(results, result)
	}
	return results
}

// Tally counts successes and failures in a provisioning run.
func Tally(results []ProvisionResult) (succeeded, failed int) {
	for _, result := range results {
		if result.Success {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}
