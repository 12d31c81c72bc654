package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	echoapi "github.com/kymoja/darasa/apps/api/echo"
	"github.com/kymoja/darasa/core"
	"github.com/kymoja/darasa/core/account"
	"github.com/kymoja/darasa/core/activity"
	"github.com/kymoja/darasa/core/attendance"
	"github.com/kymoja/darasa/core/auth"
	"github.com/kymoja/darasa/core/enrolment"
	"github.com/kymoja/darasa/core/program"
	"github.com/kymoja/darasa/core/session"
	emailsvc "github.com/kymoja/darasa/services/email"
	logsvc "github.com/kymoja/darasa/services/logger"
	"github.com/kymoja/darasa/storage/localstore"
	"github.com/kymoja/darasa/storage/remote"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// the flat file holds local data and, in remote mode, the session material
	db, err := localstore.Open(conf.LocalStorePath)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening local store: %v", err), err)
	}

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	// domain data follows the identity backend: local mode keeps everything in
	// the flat file, remote mode keeps it in the hosted document service
	var (
		backend         account.Backend
		attendanceStore attendance.Store
		enrolmentStore  enrolment.Store
		programStore    program.Store
		activityStore   activity.Store
	)
	if conf.IsLocalBackend() {
		backend = localstore.NewBackend(db, conf, mailSvc)
		attendanceStore = localstore.NewAttendanceStore(db)
		enrolmentStore = localstore.NewEnrolmentStore(db)
		programStore = localstore.NewProgramStore(db)
		activityStore = localstore.NewActivityStore(db)
	} else {
		rb := remote.NewBackend(conf, db, logger)
		backend = rb
		attendanceStore = remote.NewAttendanceStore(rb)
		enrolmentStore = remote.NewEnrolmentStore(rb)
		programStore = remote.NewProgramStore(rb)
		activityStore = remote.NewActivityStore(rb)
	}

	sessionStore := localstore.NewSessionStore(db)
	sessionMgr := session.NewManager(sessionStore)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	auth.RegisterValidators(validate, translator)

	activitySvc := activity.NewService(activityStore, logger)

	deps := echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Backend:    backend,
		Session:    sessionMgr,
		AuthFlow:   auth.NewFlow(backend, sessionMgr, sessionStore, validate),
		Attendance: attendance.NewEngine(attendanceStore),
		Enrolment:  enrolment.NewEngine(enrolmentStore),
		Programs:   program.NewService(programStore),
		Activity:   activitySvc,
		Validate:   validate,
		Translator: translator,
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// restore the previous session optimistically, then confirm in the
	// background so startup never blocks on the backend
	if sessionMgr.Restore() {
		go func() {
			if err := sessionMgr.ConfirmRestored(backend); err != nil {
				logger.Warn(fmt.Sprintf("confirming restored session: %v", err), err)
			}
		}()
	}

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(deps)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
