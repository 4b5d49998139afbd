package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/bursar/internal/attendance"
	attendanceMongo "github.com/MrJamesThe3rd/bursar/internal/attendance/mongostore"
	attendanceStore "github.com/MrJamesThe3rd/bursar/internal/attendance/store"
	"github.com/MrJamesThe3rd/bursar/internal/config"
	"github.com/MrJamesThe3rd/bursar/internal/database"
	"github.com/MrJamesThe3rd/bursar/internal/fee"
	feeMongo "github.com/MrJamesThe3rd/bursar/internal/fee/mongostore"
	feeStore "github.com/MrJamesThe3rd/bursar/internal/fee/store"
	"github.com/MrJamesThe3rd/bursar/internal/student"
	studentMongo "github.com/MrJamesThe3rd/bursar/internal/student/mongostore"
	studentStore "github.com/MrJamesThe3rd/bursar/internal/student/store"
)

// Stores bundles the repositories of the configured backend.
type Stores struct {
	Fees       fee.Repository
	Students   student.Repository
	Attendance attendance.Repository

	close func(context.Context) error
}

func (s *Stores) Close(ctx context.Context) error {
	return s.close(ctx)
}

// Open connects to the backend named by cfg.Storage.Driver.
func Open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMongo:
		return openMongo(ctx, cfg)
	default:
		return openPostgres(ctx, cfg)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config) (*Stores, error) {
	if cfg.DB.Migrate {
		if err := database.Migrate(cfg.ConnectionString()); err != nil {
			return nil, err
		}
	}

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return nil, err
	}

	zap.L().Info("connected to postgres", zap.String("host", cfg.DB.Host), zap.String("database", cfg.DB.Name))

	return &Stores{
		Fees:       feeStore.New(db),
		Students:   studentStore.New(db),
		Attendance: attendanceStore.New(db),
		close:      func(context.Context) error { return db.Close() },
	}, nil
}

func openMongo(ctx context.Context, cfg *config.Config) (*Stores, error) {
	db, err := database.NewMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		return nil, err
	}

	var (
		fees     = feeMongo.New(db)
		students = studentMongo.New(db)
		journal  = attendanceMongo.New(db)
	)

	for name, ensure := range map[string]func(context.Context) error{
		"fees":       fees.EnsureIndexes,
		"students":   students.EnsureIndexes,
		"attendance": journal.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			_ = db.Client().Disconnect(context.WithoutCancel(ctx))
			return nil, fmt.Errorf("ensuring %s indexes: %w", name, err)
		}
	}

	zap.L().Info("connected to mongo", zap.String("database", cfg.Mongo.Database))

	return &Stores{
		Fees:       fees,
		Students:   students,
		Attendance: journal,
		close:      db.Client().Disconnect,
	}, nil
}
