package e2e

import (
	"github.com/cucumber/godog"

	"landregistry/e2e/steps/common"
	"landregistry/e2e/steps/kyc"
	"landregistry/e2e/steps/market"
	"landregistry/e2e/steps/wallet"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	wallet.RegisterSteps(ctx, tc)
	kyc.RegisterSteps(ctx, tc)
	market.RegisterSteps(ctx, tc)
}
