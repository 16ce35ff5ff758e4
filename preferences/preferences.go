// Package preferences provides access to per-user notification preferences, creating them lazily with the
// configured defaults.
package preferences

import (
	"context"

	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/common"
	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/logging"
	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
)

const otelName = "github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/preferences"

var log = logging.Log.WithFields(logrus.Fields{"package": "preferences"})

// Store describes the record store operations used for preferences.
type Store interface {
	Get(ctx context.Context, userID string) (*model.Preferences, error)
	Create(ctx context.Context, prefs *model.Preferences) error
	Upsert(ctx context.Context, userID string, update model.PreferenceUpdate, defaults model.Preferences) (*model.Preferences, error)
	Backfill(ctx context.Context, defaults model.Preferences) (int64, error)
}

// Service reads and updates notification preferences.
type Service struct {
	store    Store
	defaults model.Preferences
}

// New returns a new preference service that uses defaults for users who have never saved preferences.
func New(store Store, defaults model.Preferences) *Service {
	return &Service{store: store, defaults: defaults}
}

// Defaults returns the preference values used for new records.
func (s *Service) Defaults() model.Preferences {
	return s.defaults
}

// GetOrCreate returns the preferences for a user, creating a record with the default values if the user
// doesn't have one yet. If another caller creates the record first, that record is returned.
func (s *Service) GetOrCreate(ctx context.Context, userID string) (*model.Preferences, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "preferences.GetOrCreate")
	defer span.End()

	wrapMsg := "unable to get notification preferences"

	prefs, err := s.store.Get(ctx, userID)
	if err == nil {
		return prefs, nil
	}
	if !common.IsNotFound(err) {
		span.RecordError(err)
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Materialize the defaults for this user.
	created := s.defaults
	created.UserID = userID
	err = s.store.Create(ctx, &created)
	if err == nil {
		log.WithField("user", userID).Debug("created default notification preferences")
		return &created, nil
	}
	if !common.IsDuplicate(err) {
		span.RecordError(err)
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Someone else created the record between our lookup and insert.
	prefs, err = s.store.Get(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, wrapMsg)
	}
	return prefs, nil
}

// Update merges the supplied fields into a user's preferences, creating the record from the defaults if
// necessary. Fields that aren't supplied keep their current values.
func (s *Service) Update(ctx context.Context, userID string, update model.PreferenceUpdate) (*model.Preferences, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "preferences.Update")
	defer span.End()

	prefs, err := s.store.Upsert(ctx, userID, update, s.defaults)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "unable to update notification preferences")
	}
	return prefs, nil
}

// Backfill creates default preference records for every user that doesn't have one, so that bulk
// campaigns can reach users who have never touched their preferences.
func (s *Service) Backfill(ctx context.Context) (int64, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "preferences.Backfill")
	defer span.End()

	created, err := s.store.Backfill(ctx, s.defaults)
	if err != nil {
		span.RecordError(err)
		return 0, errors.Wrap(err, "unable to backfill notification preferences")
	}
	log.WithField("created", created).Info("backfilled notification preferences")
	return created, nil
}
