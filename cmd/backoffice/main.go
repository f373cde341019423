package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jzahidzamacona/Fronty-sub001/access"
	"github.com/jzahidzamacona/Fronty-sub001/authbus"
	"github.com/jzahidzamacona/Fronty-sub001/contentlock"
	"github.com/jzahidzamacona/Fronty-sub001/idle"
	"github.com/jzahidzamacona/Fronty-sub001/internal/config"
	"github.com/jzahidzamacona/Fronty-sub001/login"
	"github.com/jzahidzamacona/Fronty-sub001/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("Error running back office")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Back office stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c.GetLogLevel())
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, closeStorage, err := openStorage(ctx, c)
	if err != nil {
		return err
	}
	defer closeStorage()

	loggedOut := make(chan struct{})
	var once sync.Once
	navigator := session.NavigatorFunc(func() {
		fmt.Printf("Session ended, sign in again at %s\n", c.GetLoginURL())
		once.Do(func() { close(loggedOut) })
	})

	bus := authbus.New()
	store := session.NewStore(st, bus,
		session.WithKeys(c.GetAccessTokenKey(), c.GetRefreshTokenKey()),
		session.WithDefaultUsername(c.GetDefaultUsername()),
		session.WithNavigator(navigator),
	)

	tracker := session.NewTracker(store, bus)
	tracker.OnChange(func(u *session.User) {
		if u == nil {
			log.Info().Msg("No active session")
			return
		}
		log.Info().Str("username", u.Username).Strs("roles", u.Roles).Msg("Session active")
	})
	bus.Subscribe(func(e authbus.Event) {
		if e.Kind == authbus.KindForbidden {
			fmt.Printf("Access denied: %s\n", e.Message)
		}
	})
	if err := tracker.Activate(ctx); err != nil {
		return err
	}
	defer tracker.Deactivate()

	if err := loginFromEnv(ctx, c, store, bus); err != nil {
		return err
	}
	if tracker.Current() == nil {
		navigator.NavigateToLogin()
		return nil
	}

	monitor, err := idle.NewMonitor(
		idle.Config{IdleLimit: c.GetIdleLimit(), WarnLead: c.GetIdleWarnLead()},
		func() { store.Logout(ctx) },
		idle.WithOnPhase(func(p idle.Phase) {
			if p == idle.PhaseWarning {
				fmt.Println("Your session is about to expire. Press enter to stay signed in.")
			}
		}),
		idle.WithOnTick(func(remaining int) {
			fmt.Printf("\rLogging out in %3ds ", remaining)
		}),
	)
	if err != nil {
		return err
	}
	monitor.Activate()
	defer monitor.Deactivate()

	cashLock, err := contentlock.New(st, contentlock.Config{
		StorageKey:    "lock:caja",
		Title:         "Caja",
		Password:      config.GetEnv("CASH_LOCK_PASSWORD", ""),
		RememberHours: 8,
	})
	if err != nil {
		return err
	}
	cashLock.Activate(ctx)
	defer cashLock.Deactivate(ctx)

	printMenu(tracker.Current(), cashLock)
	go readActivity(ctx, monitor, store, tracker, cashLock)

	select {
	case <-loggedOut:
	case <-waitForStopSignal():
		log.Info().Msg("Stop signal received")
	}
	return nil
}

var menu = []struct {
	label string
	gate  access.Gate
}{
	{"Ventas", access.Gate{}},
	{"Clientes", access.Gate{AnyOf: []string{"ADMIN", "GERENTE", "EMPLEADO"}}},
	{"Reportes", access.Gate{AnyOf: []string{"ADMIN", "GERENTE"}}},
	{"Usuarios", access.Gate{AllOf: []string{"ADMIN"}, NoneOf: []string{"SOLO_LECTURA"}}},
}

func allowedSections(u *session.User) []string {
	var labels []string
	for _, item := range menu {
		if label := access.Render(item.gate, u, item.label, ""); label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}

// printMenu lists the sections the user's roles allow. The cash register is
// also behind the content lock.
func printMenu(u *session.User, cashLock *contentlock.Lock) {
	fmt.Println("Sections:")
	for _, label := range allowedSections(u) {
		fmt.Printf("  %s\n", label)
	}
	state := "locked, type: unlock <password>"
	if cashLock.Unlocked() {
		state = "unlocked"
	}
	fmt.Printf("  %s (%s)\n", cashLock.Title(), state)
}

// readActivity counts each stdin line as a key press. "logout" ends the
// session explicitly, "menu" reprints the sections and "unlock" opens the
// cash register.
func readActivity(ctx context.Context, monitor *idle.Monitor, store *session.Store, tracker *session.Tracker, cashLock *contentlock.Lock) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		monitor.Touch(idle.ActivityKeyDown)

		command, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		switch strings.ToLower(command) {
		case "logout":
			store.Logout(ctx)
			return
		case "menu":
			printMenu(tracker.Current(), cashLock)
		case "unlock":
			if !cashLock.CanSubmit(arg) {
				fmt.Println("Password required")
				continue
			}
			if err := cashLock.Unlock(ctx, arg); err != nil {
				fmt.Println("Wrong password")
				continue
			}
			fmt.Printf("%s unlocked\n", cashLock.Title())
		}
	}
}

func loginFromEnv(ctx context.Context, c config.Config, store *session.Store, bus *authbus.Bus) error {
	username := config.GetEnv("BACKOFFICE_USER", "")
	if username == "" {
		return nil
	}
	client, err := login.New(ctx, c, store, bus)
	if err != nil {
		return err
	}
	if _, err := client.Login(ctx, username, config.GetEnv("BACKOFFICE_PASSWORD", "")); err != nil {
		if errors.Is(err, login.ErrUnauthorized) {
			log.Warn().Str("username", username).Msg("Invalid credentials")
			return nil
		}
		return err
	}
	return nil
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
