// Package app wires configuration, storage, the outbox and the LLM-backed
// services into one value the commands share.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/tutor/internal/config"
	"github.com/abhisek/tutor/internal/curriculum"
	"github.com/abhisek/tutor/internal/lessonflow"
	"github.com/abhisek/tutor/internal/llm"
	"github.com/abhisek/tutor/internal/logger"
	"github.com/abhisek/tutor/internal/outbox"
	"github.com/abhisek/tutor/internal/questiongen"
	"github.com/abhisek/tutor/internal/remediation"
	"github.com/abhisek/tutor/internal/session"
	"github.com/abhisek/tutor/internal/store"
)

// Options selects where configuration and data live. Empty fields use
// the configured or default locations.
type Options struct {
	ConfigPath string
	DBPath     string
	// LLM skips provider setup when false, for commands that never call it.
	LLM bool
}

// App holds the long-lived dependencies of one CLI invocation.
type App struct {
	Config  *config.Config
	Log     *logger.Logger
	Store   *store.Store
	Outbox  *outbox.Outbox
	Catalog *curriculum.Catalog

	// Provider is nil when no LLM is configured.
	Provider    llm.Provider
	Remediation *remediation.Service
	Questions   *questiongen.Generator

	cancel context.CancelFunc
	done   chan struct{}
}

// Open loads config and opens every dependency. The outbox starts
// delivering in the background; Close stops it and flushes.
func Open(ctx context.Context, opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	catalog, err := loadCatalog(cfg.Curriculum.Path)
	if err != nil {
		return nil, err
	}

	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = cfg.DB.Path
	}
	if dbPath == "" {
		if dbPath, err = store.DefaultDBPath(); err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
	}
	st, err := store.Open(dbPath,
		store.WithMasteryCap(cfg.Progression.MasteryCap),
		store.WithLogger(log))
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:  cfg,
		Log:     log,
		Store:   st,
		Catalog: catalog,
	}
	a.Outbox = outbox.New(st, outbox.Config{
		MaxTries:        cfg.Outbox.MaxTries,
		InitialInterval: cfg.Outbox.InitialInterval,
		MaxInterval:     cfg.Outbox.MaxInterval,
		SpoolPath:       dbPath + ".outbox",
	}, log)

	if opts.LLM {
		a.initLLM(ctx)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.cancel = cancel
	a.done = make(chan struct{})
	go func() {
		defer close(a.done)
		a.Outbox.Run(runCtx, cfg.Outbox.FlushInterval)
	}()
	return a, nil
}

func loadCatalog(path string) (*curriculum.Catalog, error) {
	if path == "" {
		return curriculum.Default(), nil
	}
	return curriculum.LoadFile(path)
}

func (a *App) initLLM(ctx context.Context) {
	lc, ok := a.Config.LLMProviderConfig()
	if !ok {
		a.Log.Info("no LLM provider configured, AI features disabled")
		return
	}
	p, err := llm.NewProvider(ctx, lc, a.Store.LLMEvents(), a.Log)
	if err != nil {
		a.Log.Warn("LLM provider unavailable", "provider", lc.Provider, "error", err)
		return
	}
	a.Provider = p
	a.Remediation = remediation.NewService(p, remediation.DefaultConfig(), a.Log)
	a.Questions = questiongen.New(p, questiongen.DefaultConfig(), a.Log)
}

// LessonConfig returns lesson settings from config.
func (a *App) LessonConfig() lessonflow.Config {
	return lessonflow.Config{
		MaxAttempts:   a.Config.Lesson.MaxAttempts,
		PracticeCount: a.Config.Lesson.PracticeCount,
		CheckDelay:    a.Config.Lesson.CheckDelay,
		PracticeDelay: a.Config.Lesson.PracticeDelay,
	}
}

// LessonDeps returns the collaborators for a lesson run. Without an LLM
// the flow falls back to static remediation text and skips practice.
func (a *App) LessonDeps() lessonflow.Deps {
	d := lessonflow.Deps{Outbox: a.Outbox, Log: a.Log}
	if a.Remediation != nil {
		d.Remediator = a.Remediation
	}
	if a.Questions != nil {
		d.Practice = a.Questions
	}
	return d
}

// Login starts a session for a student given by id or email.
func (a *App) Login(ctx context.Context, ref string) (*session.Context, error) {
	if ref == "" {
		return nil, errors.New("no student selected: pass --student or set TUTOR_STUDENT")
	}
	st, err := a.Store.Students().Get(ctx, ref)
	if errors.Is(err, store.ErrNotFound) {
		st, err = a.Store.Students().ByEmail(ctx, ref)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("student %q not found", ref)
		}
		return nil, err
	}
	return session.Start(session.Student{ID: st.ID, Name: st.Name, Grade: st.Grade})
}

// Close stops background delivery, makes a final flush and closes the
// store. Events that still can't be written are spooled for next time.
func (a *App) Close(ctx context.Context) error {
	a.cancel()
	<-a.done

	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	err := a.Outbox.Close(flushCtx)
	if err != nil {
		a.Log.Warn("progress not fully saved", "pending", a.Outbox.Pending(), "error", err)
	}
	a.Log.Sync()
	return errors.Join(err, a.Store.Close())
}
