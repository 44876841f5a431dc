package wallet

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Connect(alias string) error
	As(alias string) error
	Anonymous()
	AddressOf(alias string) string
	POST(path string, body any) error
	GET(path string) error
	Status() int
	Body() string
}

// RegisterSteps registers wallet connection and ledger steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &walletSteps{tc: tc}

	ctx.Step(`^"([^"]*)" connects a wallet$`, steps.connect)
	ctx.Step(`^"([^"]*)" disconnects$`, steps.disconnect)
	ctx.Step(`^"([^"]*)" fails to connect (\d+) times$`, steps.failConnect)
	ctx.Step(`^"([^"]*)" connects with the right passphrase$`, steps.connectOnce)
	ctx.Step(`^"([^"]*)" deposits (\d+) from the faucet$`, steps.deposit)
	ctx.Step(`^"([^"]*)" checks the wallet balance$`, steps.checkBalance)
}

const e2ePassphrase = "correct horse battery"

type walletSteps struct {
	tc TestContext
}

func (s *walletSteps) connect(ctx context.Context, alias string) error {
	return s.tc.Connect(alias)
}

func (s *walletSteps) failConnect(ctx context.Context, alias string, times int) error {
	s.tc.Anonymous()
	creds := map[string]any{"address": s.tc.AddressOf(alias), "passphrase": "not the passphrase"}
	for i := 0; i < times; i++ {
		if err := s.tc.POST("/wallet/connect", creds); err != nil {
			return err
		}
	}
	return nil
}

// connectOnce attempts a single connection and leaves the response for assertions.
func (s *walletSteps) connectOnce(ctx context.Context, alias string) error {
	s.tc.Anonymous()
	return s.tc.POST("/wallet/connect", map[string]any{"address": s.tc.AddressOf(alias), "passphrase": e2ePassphrase})
}

func (s *walletSteps) disconnect(ctx context.Context, alias string) error {
	if err := s.tc.As(alias); err != nil {
		return err
	}
	return s.tc.POST("/wallet/disconnect", nil)
}

func (s *walletSteps) deposit(ctx context.Context, alias string, amount int64) error {
	if err := s.tc.As(alias); err != nil {
		return err
	}
	if err := s.tc.POST("/wallet/deposit", map[string]any{"amount": amount}); err != nil {
		return err
	}
	if s.tc.Status() != 200 {
		return fmt.Errorf("deposit for %s failed (is WALLET_FAUCET_ENABLED set?): %s", alias, s.tc.Body())
	}
	return nil
}

func (s *walletSteps) checkBalance(ctx context.Context, alias string) error {
	if err := s.tc.As(alias); err != nil {
		return err
	}
	return s.tc.GET("/wallet/account")
}
