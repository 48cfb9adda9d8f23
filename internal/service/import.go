package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/newthinker/tradelens/internal/analytics"
	"github.com/newthinker/tradelens/internal/core"
	"github.com/newthinker/tradelens/internal/storage/trade"
)

// ImportResult reports the IDs stored by Import, in input order.
type ImportResult struct {
	Imported int      `json:"imported"`
	IDs      []string `json:"ids"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(validateRecord, core.TradeRecord{})
	return v
}

// validateRecord checks the fields the engine would otherwise silently
// coerce: dates must parse and numbers, when present, must be numeric and
// within float64 range.
func validateRecord(sl validator.StructLevel) {
	r := sl.Current().Interface().(core.TradeRecord)

	if r.EntryDate != "" && analytics.ParseDay(r.EntryDate).IsZero() {
		sl.ReportError(r.EntryDate, "EntryDate", "entry_date", "tradedate", "")
	}
	if r.ExitDate != "" && analytics.ParseDay(r.ExitDate).IsZero() {
		sl.ReportError(r.ExitDate, "ExitDate", "exit_date", "tradedate", "")
	}

	numbers := []struct {
		field, tag string
		value      core.RawNumber
	}{
		{"EntryPrice", "entry_price", r.EntryPrice},
		{"ExitPrice", "exit_price", r.ExitPrice},
		{"Quantity", "quantity", r.Quantity},
		{"RiskPercent", "risk_percent", r.RiskPercent},
	}
	for _, n := range numbers {
		if strings.TrimSpace(string(n.value)) == "" {
			continue
		}
		if _, ok := analytics.ParseNumber(n.value); !ok {
			sl.ReportError(n.value, n.field, n.tag, "number", "")
		}
	}
}

// ValidateRecord checks one record the way Import does.
func (s *Service) ValidateRecord(r core.TradeRecord) error {
	if err := s.validate.Struct(r); err != nil {
		return core.WrapError(core.ErrInvalidTrade, describeValidation(err))
	}
	return nil
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return errors.New(strings.Join(parts, "; "))
}

// Import validates and stores records for the user. Records without an ID
// get a fresh UUID. Nothing is stored when any record is invalid.
func (s *Service) Import(ctx context.Context, userID string, records []core.TradeRecord) (ImportResult, error) {
	if err := trade.ValidateUserID(userID); err != nil {
		return ImportResult{}, err
	}
	if len(records) == 0 {
		return ImportResult{}, core.WrapError(core.ErrInvalidTrade, errors.New("no records"))
	}

	prepared := make([]core.TradeRecord, len(records))
	ids := make([]string, len(records))
	for i, r := range records {
		if err := s.validate.Struct(r); err != nil {
			return ImportResult{}, core.WrapError(core.ErrInvalidTrade,
				fmt.Errorf("record %d: %w", i, describeValidation(err)))
		}
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		r.UserID = userID
		prepared[i] = r
		ids[i] = r.ID
	}

	if err := s.repo.SaveTrades(ctx, userID, prepared); err != nil {
		return ImportResult{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordImport(len(prepared))
	}
	s.log.Info("imported trades", zap.String("user", userID), zap.Int("count", len(prepared)))

	return ImportResult{Imported: len(prepared), IDs: ids}, nil
}

// DeleteTrade removes one of the user's records.
func (s *Service) DeleteTrade(ctx context.Context, userID, id string) error {
	if err := trade.ValidateUserID(userID); err != nil {
		return err
	}
	if err := s.repo.DeleteTrade(ctx, userID, id); err != nil {
		return err
	}
	s.log.Info("deleted trade", zap.String("user", userID), zap.String("id", id))
	return nil
}
