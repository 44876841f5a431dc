//go:build integration

package kafka_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"landregistry/internal/platform/config"
	"landregistry/internal/platform/kafka"
	"landregistry/pkg/domain"
	"landregistry/pkg/platform/audit"
	auditpostgres "landregistry/pkg/platform/audit/store/postgres"
	"landregistry/pkg/platform/audit/worker"
	"landregistry/pkg/platform/tx"
	"landregistry/pkg/testutil/containers"
)

type RelaySuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	redpanda *containers.RedpandaContainer
	producer *kafka.Producer
	topic    string
}

func TestRelaySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RelaySuite))
}

func (s *RelaySuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.redpanda = mgr.GetRedpanda(s.T())
	s.topic = "landregistry.audit.test"

	p, err := kafka.New(config.KafkaConfig{Brokers: s.redpanda.Brokers, AuditTopic: s.topic})
	s.Require().NoError(err)
	s.Require().NotNil(p)
	s.producer = p
	s.Require().NoError(s.producer.EnsureTopic(context.Background(), 1, 1))
}

func (s *RelaySuite) TearDownSuite() {
	if s.producer != nil {
		s.producer.Close()
	}
}

func (s *RelaySuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "outbox"))
}

func (s *RelaySuite) TestEnsureTopicIsIdempotent() {
	s.NoError(s.producer.EnsureTopic(context.Background(), 1, 1))
	s.NoError(s.producer.Health(context.Background()))
}

func (s *RelaySuite) TestOutboxRowsReachTheTopic() {
	ctx := context.Background()
	db := s.postgres.DB
	runner := tx.NewPostgresRunner(db)
	outbox := auditpostgres.New(db)
	publisher := audit.NewPublisher(outbox)

	seller := domain.MustAddress("0x1111111111111111111111111111111111111111")
	s.Require().NoError(runner.RunInTx(ctx, func(ctx context.Context) error {
		return publisher.Emit(ctx, audit.Event{
			Actor:   seller,
			Subject: "sale:1",
			Action:  string(audit.EventSaleCreated),
			Amount:  90_000,
		})
	}))

	relay := worker.NewWorker(outbox, s.producer, runner, worker.WithBatchSize(10))
	n, err := relay.Tick(ctx)
	s.Require().NoError(err)
	s.Equal(1, n)

	pending, err := outbox.PendingCount(ctx)
	s.Require().NoError(err)
	s.Zero(pending)

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Brokers...),
		kgo.ConsumeTopics(s.topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	pollCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	var records []*kgo.Record
	for len(records) == 0 && pollCtx.Err() == nil {
		fetches := consumer.PollFetches(pollCtx)
		fetches.EachRecord(func(r *kgo.Record) { records = append(records, r) })
	}
	s.Require().NotEmpty(records)

	rec := records[len(records)-1]
	s.Equal("sale:1", string(rec.Key))
	s.Contains(string(rec.Value), seller.String())
	headers := map[string]string{}
	for _, h := range rec.Headers {
		headers[h.Key] = string(h.Value)
	}
	s.Equal(string(audit.EventSaleCreated), headers["event_type"])
	s.NotEmpty(headers["outbox_id"])
}
