// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package service wires the navigation session to its location and orientation sources and
// prints the session state as waybar status line.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/vorlif/spreak"
	"golang.org/x/text/language"

	"github.com/wneessen/trailnav/internal/config"
	"github.com/wneessen/trailnav/internal/export"
	"github.com/wneessen/trailnav/internal/geobus"
	"github.com/wneessen/trailnav/internal/logger"
	"github.com/wneessen/trailnav/internal/presenter"
	"github.com/wneessen/trailnav/internal/session"
	"github.com/wneessen/trailnav/internal/storage"
)

const (
	AppName     = "trailnav"
	loadTimeout = time.Second * 10
)

type Service struct {
	config    *config.Config
	logger    *logger.Logger
	output    io.Writer
	presenter *presenter.Presenter
	scheduler gocron.Scheduler
	blob      storage.Blob
	geobus    *geobus.GeoBus
	session   *session.Session
	now       func() time.Time

	location    *geobus.Orchestrator
	orientation *geobus.Orchestrator

	// runCtx is set by Run before the session starts and scopes the location providers.
	runCtx       context.Context
	locationLock sync.Mutex
	stopLocation func()

	SignalSrc  signalSource
	watchSleep func(context.Context)
}

func New(conf *config.Config, log *logger.Logger, loc *spreak.Localizer, tag language.Tag) (*Service, error) {
	if log == nil {
		log = logger.Discard()
	}
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	pres, err := presenter.New(conf, loc, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to create presenter: %w", err)
	}

	service := &Service{
		config:    conf,
		logger:    log,
		output:    os.Stdout,
		presenter: pres,
		scheduler: scheduler,
		geobus:    geobus.New(log, geobus.DefaultQueueSize),
		now:       time.Now,
		SignalSrc: stdLibSignalSource{},
	}
	service.watchSleep = service.monitorSleepResume

	locationProviders, err := service.selectLocationProviders()
	if err != nil {
		return nil, fmt.Errorf("failed to create geobus orchestrator: %w", err)
	}
	service.location = service.geobus.NewOrchestrator(locationProviders)
	service.orientation = service.geobus.NewOrchestrator(service.selectOrientationProviders())

	service.blob, err = storage.Open(conf.Storage.Driver, conf.Storage.Path, conf.Storage.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to open waypoint storage: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	service.session = session.New(ctx, session.Options{
		Logger:               log,
		Storage:              service.blob,
		Permission:           service.selectPermissionOracle(),
		Notifier:             service.selectNotifier(loc),
		Subscribe:            service.subscribeLocation,
		Events:               service.geobus.Events(),
		OnError:              service.reportError,
		AlertRadius:          conf.Navigation.AlertRadius,
		MinTrailDisplacement: conf.Navigation.MinTrailDisplacement,
		NearbyRadius:         conf.Navigation.NearbyRadius,
	})

	return service, nil
}

// Run starts the orientation providers, the status output job and the navigation session. It
// blocks until the context is cancelled. On shutdown the waypoints are flushed and, if
// configured, the waypoints and trail are exported.
func (s *Service) Run(ctx context.Context) error {
	if err := s.createScheduledJob(ctx, s.config.Intervals.Output, s.printStatus,
		"status_output_job"); err != nil {
		return err
	}
	s.runCtx = ctx
	s.scheduler.Start()

	var wg sync.WaitGroup
	stopOrientation := s.orientation.Start(ctx)

	sigChan := make(chan os.Signal, 1)
	s.SignalSrc.Notify(sigChan, syscall.SIGUSR1, syscall.SIGUSR2, syscall.SIGHUP)
	wg.Go(func() {
		defer s.SignalSrc.Stop(sigChan)
		s.HandleSignals(ctx, sigChan)
	})
	if s.watchSleep != nil {
		wg.Go(func() { s.watchSleep(ctx) })
	}

	s.printStatus(ctx)
	runErr := s.session.Run(ctx)

	stopOrientation()
	wg.Wait()
	s.unsubscribeLocation()

	errs := []error{runErr}
	if err := s.location.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.session.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.export(); err != nil {
		errs = append(errs, err)
	}
	if err := s.blob.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close waypoint storage: %w", err))
	}
	if err := s.scheduler.Shutdown(); err != nil {
		errs = append(errs, fmt.Errorf("failed to shut down scheduler: %w", err))
	}
	return errors.Join(errs...)
}

func (s *Service) createScheduledJob(ctx context.Context, interval time.Duration, task func(context.Context),
	jobName string,
) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(jobName),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", jobName, err)
	}
	return nil
}

// printStatus renders the latest session snapshot and writes it as JSON line to the output.
func (s *Service) printStatus(context.Context) {
	out, err := s.presenter.Render(s.presenter.BuildContext(s.session.Snapshot(), s.now()))
	if err != nil {
		s.logger.Error("failed to render status", logger.Err(err))
		return
	}
	if err = json.NewEncoder(s.output).Encode(out); err != nil {
		s.logger.Error("failed to encode status", logger.Err(err))
	}
}

// export writes the final waypoints and trail to the configured export path.
func (s *Service) export() error {
	if s.config.Export.Path == "" {
		return nil
	}
	state := s.session.Snapshot()
	track := export.Track{
		Name:      AppName,
		Waypoints: state.Waypoints,
		Trail:     state.Trail,
	}
	if err := export.WriteFile(s.config.Export.Path, track); err != nil {
		return fmt.Errorf("failed to export track: %w", err)
	}
	s.logger.Debug("track exported", slog.String("path", s.config.Export.Path),
		slog.Int("waypoints", len(track.Waypoints)), slog.Int("trail", len(track.Trail)))
	return nil
}

// subscribeLocation starts the location providers. It is called by the session when tracking
// starts.
func (s *Service) subscribeLocation() (func(), error) {
	s.locationLock.Lock()
	defer s.locationLock.Unlock()
	if s.runCtx == nil {
		return nil, errors.New("service is not running")
	}
	if s.stopLocation == nil {
		s.stopLocation = s.location.Start(s.runCtx)
	}
	return s.unsubscribeLocation, nil
}

func (s *Service) unsubscribeLocation() {
	s.locationLock.Lock()
	defer s.locationLock.Unlock()
	if s.stopLocation != nil {
		s.stopLocation()
		s.stopLocation = nil
	}
}

// restartLocation restarts the streams of running location providers.
func (s *Service) restartLocation() {
	s.locationLock.Lock()
	defer s.locationLock.Unlock()
	if s.stopLocation == nil {
		return
	}
	s.stopLocation()
	s.stopLocation = s.location.Start(s.runCtx)
}

func (s *Service) reportError(err error) {
	s.logger.Error("navigation session error", logger.Err(err))
}
