package option

import (
	"context"
	"time"

	"deltaoption/internal/domain/escrow"
	"deltaoption/internal/domain/option"
	"deltaoption/internal/domain/pricing"
	"deltaoption/internal/events"
	"deltaoption/internal/metrics"
	"deltaoption/pkg/errors"
	"deltaoption/pkg/fixedpoint"
	"deltaoption/pkg/logger"
)

// PriceOracle supplies the latest oracle price for a symbol
type PriceOracle interface {
	USDPrice(ctx context.Context, symbol string) (fixedpoint.Value, error)
}

// Transactor commits a lifecycle transition and its journal entries as
// one unit: if fn fails nothing it wrote survives
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service owns the option lifecycle: it validates attached payments,
// drives the written -> bought -> (exercised | canceled) state machine,
// and journals every native-asset movement against the escrow pool.
type Service struct {
	repo      option.Repository
	journal   escrow.Repository
	tx        Transactor
	oracle    PriceOracle
	publisher events.Publisher
	log       *logger.Logger
}

// NewService creates a new option ledger service
func NewService(
	repo option.Repository,
	journal escrow.Repository,
	tx Transactor,
	oracle PriceOracle,
	publisher events.Publisher,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:      repo,
		journal:   journal,
		tx:        tx,
		oracle:    oracle,
		publisher: publisher,
		log:       log,
	}
}

// WriteParams carries a writeOption request. Value is the attached
// native-asset payment and must equal Amount exactly.
type WriteParams struct {
	Symbol  string
	Writer  string
	Strike  fixedpoint.Value
	Premium fixedpoint.Value
	Amount  fixedpoint.Value
	Expiry  time.Time
	Value   fixedpoint.Value
}

// Write creates a new option and locks the writer's collateral
func (s *Service) Write(ctx context.Context, p WriteParams) (*option.Option, error) {
	if p.Symbol == "" {
		return nil, errors.NewValidationError("symbol", "must not be empty", p.Symbol)
	}
	if p.Writer == "" {
		return nil, errors.NewValidationError("writer", "must not be empty", p.Writer)
	}
	if !p.Strike.IsPositive() {
		return nil, errors.NewValidationError("strike", "must be positive", p.Strike.String())
	}
	if !p.Amount.IsPositive() {
		return nil, errors.NewValidationError("amount", "must be positive", p.Amount.String())
	}
	if p.Premium.Sign() < 0 {
		return nil, errors.NewValidationError("premium", "must not be negative", p.Premium.String())
	}
	if !p.Expiry.After(time.Now()) {
		return nil, errors.ErrExpiryInPast
	}
	if !p.Value.Equal(p.Amount) {
		return nil, errors.Wrapf(errors.ErrPaymentMismatch, "collateral %s required, %s attached", p.Amount, p.Value)
	}

	o := &option.Option{
		Symbol:  p.Symbol,
		Writer:  p.Writer,
		Strike:  p.Strike,
		Premium: p.Premium,
		Amount:  p.Amount,
		Expiry:  p.Expiry,
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, o); err != nil {
			return errors.Wrap(err, "failed to create option")
		}
		return errors.Wrap(
			s.journal.Record(ctx, escrow.NewCollateralLock(o.Symbol, o.ID, o.Writer, o.Amount)),
			"failed to journal collateral lock",
		)
	})
	if err != nil {
		s.countTransition(p.Symbol, "write", false)
		return nil, err
	}

	s.publish(ctx, events.NewOptionEvent(events.TypeOptionWritten, o))
	s.countTransition(p.Symbol, "write", true)

	s.log.Infow("Option written",
		"symbol", o.Symbol,
		"option_id", o.ID,
		"writer", o.Writer,
		"amount", o.Amount.Decimal(),
		"strike", o.Strike.Decimal(),
		"expiry", o.Expiry,
	)

	return o, nil
}

// BuyParams carries a buyOption request. Value must cover the premium.
type BuyParams struct {
	Symbol string
	ID     int64
	Buyer  string
	Value  fixedpoint.Value
}

// Buy assigns the buyer and journals the premium to the writer
func (s *Service) Buy(ctx context.Context, p BuyParams) error {
	if p.Buyer == "" {
		return errors.NewValidationError("buyer", "must not be empty", p.Buyer)
	}

	o, err := s.repo.GetBySymbolID(ctx, p.Symbol, p.ID)
	if err != nil {
		return err
	}

	if err := o.CanBuy(); err != nil {
		s.countTransition(p.Symbol, "buy", false)
		return err
	}
	if p.Value.Cmp(o.Premium) < 0 {
		s.countTransition(p.Symbol, "buy", false)
		return errors.Wrapf(errors.ErrInsufficientPayment, "premium %s required, %s attached", o.Premium, p.Value)
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.SetBuyer(ctx, p.Symbol, p.ID, p.Buyer); err != nil {
			return err
		}
		return errors.Wrap(
			s.journal.Record(ctx, escrow.NewPremium(o.Symbol, o.ID, p.Buyer, o.Writer, o.Premium)),
			"failed to journal premium",
		)
	})
	if err != nil {
		s.countTransition(p.Symbol, "buy", false)
		return err
	}
	o.Buyer = p.Buyer

	s.publish(ctx, events.NewOptionEvent(events.TypeOptionBought, o))
	s.countTransition(p.Symbol, "buy", true)

	s.log.Infow("Option bought",
		"symbol", o.Symbol,
		"option_id", o.ID,
		"buyer", o.Buyer,
		"premium", o.Premium.Decimal(),
	)

	return nil
}

// Cancel terminates an unsold option and returns collateral to the writer
func (s *Service) Cancel(ctx context.Context, symbol string, id int64, caller string) error {
	o, err := s.repo.GetBySymbolID(ctx, symbol, id)
	if err != nil {
		return err
	}

	if err := o.CanCancel(caller); err != nil {
		s.countTransition(symbol, "cancel", false)
		return err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.MarkCanceled(ctx, symbol, id, true); err != nil {
			return err
		}
		return errors.Wrap(
			s.journal.Record(ctx, escrow.NewCollateralRelease(o.Symbol, o.ID, o.Writer, o.Amount)),
			"failed to journal collateral release",
		)
	})
	if err != nil {
		s.countTransition(symbol, "cancel", false)
		return err
	}
	o.Canceled = true

	s.publish(ctx, events.NewOptionEvent(events.TypeOptionCanceled, o))
	s.countTransition(symbol, "cancel", true)

	s.log.Infow("Option canceled",
		"symbol", o.Symbol,
		"option_id", o.ID,
		"writer", o.Writer,
	)

	return nil
}

// ExerciseParams carries an exercise request. Value must equal the
// quoted exercise cost rescaled to 18-decimal native units.
type ExerciseParams struct {
	Symbol string
	ID     int64
	Caller string
	Value  fixedpoint.Value
}

// Exercise settles the option: the buyer pays the quoted cost to the
// writer and receives the locked collateral
func (s *Service) Exercise(ctx context.Context, p ExerciseParams) error {
	o, err := s.repo.GetBySymbolID(ctx, p.Symbol, p.ID)
	if err != nil {
		return err
	}

	if err := o.CanExercise(p.Caller, time.Now()); err != nil {
		s.countTransition(p.Symbol, "exercise", false)
		return err
	}

	price, err := s.oracle.USDPrice(ctx, p.Symbol)
	if err != nil {
		s.countTransition(p.Symbol, "exercise", false)
		return errors.Wrap(err, "failed to fetch oracle price")
	}

	cost, err := pricing.ExerciseCost(o.Strike, price, o.Amount)
	if err != nil {
		s.countTransition(p.Symbol, "exercise", false)
		return err
	}

	required := cost.AsValue()
	if !p.Value.Equal(required) {
		s.countTransition(p.Symbol, "exercise", false)
		return errors.Wrapf(errors.ErrPaymentMismatch, "cost %s required, %s attached", required, p.Value)
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.MarkExercised(ctx, p.Symbol, p.ID); err != nil {
			return err
		}
		if err := s.journal.Record(ctx, escrow.NewSettlement(o.Symbol, o.ID, o.Buyer, o.Writer, required)); err != nil {
			return errors.Wrap(err, "failed to journal settlement")
		}
		return errors.Wrap(
			s.journal.Record(ctx, escrow.NewCollateralRelease(o.Symbol, o.ID, o.Buyer, o.Amount)),
			"failed to journal collateral release",
		)
	})
	if err != nil {
		s.countTransition(p.Symbol, "exercise", false)
		return err
	}
	o.Exercised = true

	s.publish(ctx, events.NewOptionEvent(events.TypeOptionExercised, o))
	s.countTransition(p.Symbol, "exercise", true)

	s.log.Infow("Option exercised",
		"symbol", o.Symbol,
		"option_id", o.ID,
		"buyer", o.Buyer,
		"cost", cost.Decimal(),
		"amount", o.Amount.Decimal(),
	)

	return nil
}

// RetrieveExpiredFunds returns collateral of an expired, never-exercised
// option to its writer
func (s *Service) RetrieveExpiredFunds(ctx context.Context, symbol string, id int64, caller string) error {
	o, err := s.repo.GetBySymbolID(ctx, symbol, id)
	if err != nil {
		return err
	}

	if err := o.CanReclaim(caller, time.Now()); err != nil {
		s.countTransition(symbol, "reclaim", false)
		return err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.MarkCanceled(ctx, symbol, id, false); err != nil {
			return err
		}
		return errors.Wrap(
			s.journal.Record(ctx, escrow.NewCollateralRelease(o.Symbol, o.ID, o.Writer, o.Amount)),
			"failed to journal collateral release",
		)
	})
	if err != nil {
		s.countTransition(symbol, "reclaim", false)
		return err
	}
	o.Canceled = true

	s.publish(ctx, events.NewOptionEvent(events.TypeOptionReclaimed, o))
	s.countTransition(symbol, "reclaim", true)

	s.log.Infow("Expired collateral reclaimed",
		"symbol", o.Symbol,
		"option_id", o.ID,
		"writer", o.Writer,
		"amount", o.Amount.Decimal(),
	)

	return nil
}

// Get returns a single option by its ledger key
func (s *Service) Get(ctx context.Context, symbol string, id int64) (*option.Option, error) {
	return s.repo.GetBySymbolID(ctx, symbol, id)
}

// Quote returns the current exercise cost of an option at the latest
// oracle price
func (s *Service) Quote(ctx context.Context, symbol string, id int64) (fixedpoint.Cost, error) {
	o, err := s.repo.GetBySymbolID(ctx, symbol, id)
	if err != nil {
		return fixedpoint.Cost{}, err
	}

	price, err := s.oracle.USDPrice(ctx, symbol)
	if err != nil {
		return fixedpoint.Cost{}, errors.Wrap(err, "failed to fetch oracle price")
	}

	return pricing.ExerciseCost(o.Strike, price, o.Amount)
}

func (s *Service) publish(ctx context.Context, event *events.OptionEvent) {
	if err := s.publisher.PublishOption(ctx, event); err != nil {
		s.log.Warnw("Failed to publish option event",
			"type", event.Type,
			"symbol", event.Symbol,
			"option_id", event.OptionID,
			"error", err,
		)
	}
}

func (s *Service) countTransition(symbol, action string, ok bool) {
	status := "success"
	if !ok {
		status = "error"
	}
	metrics.OptionTransitions.WithLabelValues(symbol, action, status).Inc()
}
