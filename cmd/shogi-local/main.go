package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"zoushogi/internal/engine"
	"zoushogi/internal/logx"
	httpserver "zoushogi/internal/server/http"
)

func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default: // linux / bsd
		cmd = exec.Command("xdg-open", url)
	}

	_ = cmd.Start() // 不阻塞，没有图形界面时失败也无所谓
}

func main() {
	addr := flag.String("addr", ":2888", "listen address")
	webDir := flag.String("web", "./web", "directory with index.html / js / svg")
	mobileDir := flag.String("web-mobile", "", "directory with mobile assets (default: same as -web)")
	bookPath := flag.String("book", "", "opening book JSON")
	think := flag.Duration("think", 3*time.Second, "default AI think time")
	ttBits := flag.Int("tt-bits", 22, "transposition table size as power of two")
	level := flag.String("log-level", "info", "debug / info / warn / error")
	pretty := flag.Bool("pretty", true, "colored console logs")
	noBrowser := flag.Bool("no-browser", false, "do not open a browser")
	idle := flag.Duration("idle", 2*time.Hour, "drop games untouched for this long (0 = never)")
	flag.Parse()

	log := logx.New(logx.Options{Level: *level, Pretty: *pretty})

	cfg := engine.DefaultConfig()
	cfg.TTBits = *ttBits
	cfg.Logger = log.With().Str("component", "engine").Logger()

	srv, err := httpserver.NewServer(httpserver.Options{
		Engine:    cfg,
		BookPath:  *bookPath,
		ThinkTime: *think,
		WebDir:    *webDir,
		MobileDir: *mobileDir,
		Logger:    log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("init server")
	}

	hs := &http.Server{Addr: *addr, Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", *addr).Str("web", *webDir).Msg("listening")
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if *idle > 0 {
		g.Go(func() error {
			tick := time.NewTicker(time.Minute)
			defer tick.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-tick.C:
					srv.Games().EvictIdle(*idle)
				}
			}
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return hs.Shutdown(shutdownCtx)
	})

	if !*noBrowser {
		// 延迟 100ms 打开默认浏览器，否则服务器可能还没起来
		go func() {
			time.Sleep(100 * time.Millisecond)
			openBrowser("http://127.0.0.1" + *addr)
		}()
	}

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Int("games", srv.Games().Len()).Msg("bye")
}
