package mobile

import (
	"net/http"
	"os"
	"time"

	"zoushogi/internal/engine"
	"zoushogi/internal/logx"
	httpserver "zoushogi/internal/server/http"
)

// StartServer 启动本机 HTTP 服务。
// webDir: 解压后的前端资源目录
// bookPath: 定跡 JSON，空串不用
// port: 监听端口，如 "2888"
func StartServer(webDir string, bookPath string, port string) {
	log := logx.New(logx.Options{Level: "info", Writer: os.Stdout})

	cfg := engine.DefaultConfig()
	cfg.TTBits = 18 // 手机内存小

	srv, err := httpserver.NewServer(httpserver.Options{
		Engine:    cfg,
		BookPath:  bookPath,
		ThinkTime: 2 * time.Second,
		WebDir:    webDir,
		Logger:    log,
	})
	if err != nil {
		log.Error().Err(err).Msg("init server")
		return
	}

	// 放后台跑，不能卡住 Android UI 线程
	go func() {
		for range time.Tick(10 * time.Minute) {
			srv.Games().EvictIdle(time.Hour)
		}
	}()
	go func() {
		if err := http.ListenAndServe("127.0.0.1:"+port, srv); err != nil {
			log.Error().Err(err).Msg("server error")
		}
	}()
}
