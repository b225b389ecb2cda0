package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/gestion-humana/portal/backend/internal/calendar"
	"github.com/gestion-humana/portal/backend/internal/config"
	"github.com/gestion-humana/portal/backend/internal/repository"
	"github.com/gestion-humana/portal/backend/internal/seed"
)

func main() {
	var op int
	var n int
	var holidaysFile string

	flag.IntVar(&op, "op", 0, "operación (1: usuarios aleatorios, 2: festivos desde CSV, 3: solicitudes aleatorias)")
	flag.IntVar(&n, "n", 5, "cantidad de registros")
	flag.StringVar(&holidaysFile, "holidays", seed.DefaultHolidaysFile, "archivo CSV de festivos")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("no se pudo cargar la configuración", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("no se pudo crear el pool de conexiones", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("no se pudo conectar a la base de datos", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		logger.Error("no se indicó ninguna operación")
	case 1:
		if n <= 0 {
			logger.Error("la cantidad de usuarios debe ser positiva")
			return
		}
		logger.Info("usuarios insertados", slog.Int("count", seed.SeedUsers(repo, cfg, n)))
	case 2:
		count, err := seed.SeedHolidays(repo, holidaysFile)
		if err != nil {
			logger.Error("no se pudieron importar los festivos", slog.String("error", err.Error()))
			return
		}
		logger.Info("festivos importados", slog.Int("count", count))
	case 3:
		if n <= 0 {
			logger.Error("la cantidad de solicitudes debe ser positiva")
			return
		}

		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			logger.Error("zona horaria inválida", slog.String("error", err.Error()))
			return
		}

		policy, err := calendar.PolicyByName(cfg.Leave.RestDays)
		if err != nil {
			logger.Error("política de descanso inválida", slog.String("error", err.Error()))
			return
		}
		if cfg.Leave.IncludeHolidays {
			holidays, err := repo.GetAllHolidays()
			if err != nil {
				logger.Error("no se pudieron leer los festivos", slog.String("error", err.Error()))
				return
			}
			specs := make([]calendar.HolidaySpec, 0, len(holidays))
			for _, h := range holidays {
				specs = append(specs, h.Spec())
			}
			policy = calendar.AnyOf(policy, calendar.HolidayRest(calendar.NewHolidayCalendar(specs...)))
		}

		count, err := seed.SeedLeaveRequests(repo, policy, calendar.Today(loc), n)
		if err != nil {
			logger.Error("no se pudieron generar las solicitudes", slog.String("error", err.Error()))
		}
		logger.Info("solicitudes insertadas", slog.Int("count", count))
	default:
		logger.Error("operación desconocida", slog.Int("op", op))
	}
}
