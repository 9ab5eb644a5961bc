package bot

import (
	"context"
	"sync/atomic"
	"time"

	"winnerbot/internal/config"
	"winnerbot/internal/store"
	"winnerbot/internal/telegram"
	"winnerbot/internal/telegram/middleware"
	"winnerbot/internal/telegram/sender"
	"winnerbot/internal/telegram/state"

	tele "gopkg.in/telebot.v4"
)

// App wires storage, conversation state and the Telegram transport into the
// running giveaway bot.
type App struct {
	cfg    *config.Config
	store  *store.Store
	admins *store.AdminRegistry
	fsm    state.Manager

	enabled atomic.Bool

	// checker is assigned in the OnStart hook, before the poller delivers
	// any update.
	checker GroupChecker
}

// NewApp assembles the application over an already connected store.
func NewApp(cfg *config.Config, st *store.Store) *App {
	app := &App{
		cfg:    cfg,
		store:  st,
		admins: store.NewAdminRegistry(cfg.Telegram.AdminIDs, st.Admins),
		fsm:    state.NewMemoryManager(),
	}
	app.enabled.Store(true)
	app.registerWorkflows()
	return app
}

// Enabled reports whether the bot currently serves non-admin traffic.
func (a *App) Enabled() bool { return a.enabled.Load() }

// Run serves Telegram updates until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.admins.Load(ctx); err != nil {
		return err
	}

	reg := telegram.NewRegistry()
	a.registerCommands(reg)

	middlewares := []telegram.Middleware{
		{Name: "enabled_gate", Use: middleware.EnabledGateMiddleware(a, a.admins)},
	}
	if a.cfg.RateLimit.IntervalMS > 0 {
		middlewares = append(middlewares, telegram.Middleware{
			Name: "rate_limit",
			Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
				Interval: time.Duration(a.cfg.RateLimit.IntervalMS) * time.Millisecond,
			}),
		})
	}

	routes := telegram.CommandRoutes(reg, a.admins)
	routes = append(routes, telegram.TextRoutes(a.fsm)...)

	ttl := time.Duration(a.cfg.Bot.StateTTLMinutes) * time.Minute

	return telegram.RunTelegram(ctx, telegram.RunOptions{
		Config:            a.cfg,
		Registry:          reg,
		DispatcherOptions: sender.Options{},
		Middlewares:       middlewares,
		Routes:            routes,
		OnStart: func(ctx context.Context, rt telegram.Runtime) error {
			a.checker = NewTelegramGroupChecker(rt.Bot)
			go state.Janitor(ctx, a.fsm, ttl)
			return nil
		},
	})
}

func (a *App) registerCommands(reg *telegram.Registry) {
	// Any recognized command other than /end and /cancel interrupts a
	// pending conversation before it runs.
	brk := func(h tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			a.interruptFlow(c)
			return h(c)
		}
	}

	// Public commands.
	reg.RegisterCommand("/start", telegram.Command{Handler: brk(a.handleStart), Description: "안내 메시지 보기"})
	reg.RegisterCommand("/help", telegram.Command{Handler: brk(a.handleHelp), Description: "명령어 설명 보기"})
	reg.RegisterCommand("/form", telegram.Command{Handler: brk(a.handleForm), Description: "구글 폼 링크 요청"})
	reg.RegisterCommand("/list_winners", telegram.Command{Handler: brk(a.handleListWinners), Description: "상품별 당첨자 리스트 확인"})
	reg.RegisterCommand("/submit_winner", telegram.Command{Handler: brk(a.handleSubmitWinner), Description: "상품 발송을 위한 전화번호 제출"})
	reg.RegisterCommand("/join", telegram.Command{Handler: brk(a.handleJoin), Description: "진행 중인 추첨 참여"})
	reg.RegisterCommand("/cancel", telegram.Command{Handler: a.handleCancel, Description: "진행 중인 작업 취소", AdminOnly: true})
	reg.RegisterCommand("/end", telegram.Command{Handler: a.handleEnd, Description: "입력 완료", Hidden: true})

	// Admin commands are never advertised in the menu.
	reg.RegisterCommand("/add_winner", telegram.Command{Handler: brk(a.handleAddWinner), Description: "새 상품 및 당첨자 등록", AdminOnly: true})
	reg.RegisterCommand("/delete_winner", telegram.Command{Handler: brk(a.handleDeleteWinner), Description: "특정 당첨자 삭제", AdminOnly: true})
	reg.RegisterCommand("/delete_product_winners", telegram.Command{Handler: brk(a.handleDeleteProductWinners), Description: "상품별 당첨자 전체 삭제", AdminOnly: true})
	reg.RegisterCommand("/change_product_name", telegram.Command{Handler: brk(a.handleChangeProductName), Description: "당첨자의 상품명 변경", AdminOnly: true})
	reg.RegisterCommand("/show_winners", telegram.Command{Handler: brk(a.handleShowWinners), Description: "당첨자 전체 목록 (전화번호 포함)", AdminOnly: true})
	reg.RegisterCommand("/show_winners_with_phone", telegram.Command{Handler: brk(a.handleShowWinnersWithPhone), Description: "전화번호 제출 완료 당첨자", AdminOnly: true})
	reg.RegisterCommand("/show_winners_without_phone", telegram.Command{Handler: brk(a.handleShowWinnersWithoutPhone), Description: "전화번호 미제출 당첨자", AdminOnly: true})
	reg.RegisterCommand("/clear_phones_all", telegram.Command{Handler: brk(a.handleClearPhonesAll), Description: "전체 전화번호 삭제", AdminOnly: true})
	reg.RegisterCommand("/clear_phones_product", telegram.Command{Handler: brk(a.handleClearPhonesProduct), Description: "상품별 전화번호 삭제", AdminOnly: true})
	reg.RegisterCommand("/export_winners", telegram.Command{Handler: brk(a.handleExportWinners), Description: "당첨자 CSV 내보내기", AdminOnly: true})
	reg.RegisterCommand("/add_admin", telegram.Command{Handler: brk(a.handleAddAdmin), Description: "관리자 추가", AdminOnly: true})
	reg.RegisterCommand("/del_admin", telegram.Command{Handler: brk(a.handleDelAdmin), Description: "관리자 삭제", AdminOnly: true})
	reg.RegisterCommand("/list_admins", telegram.Command{Handler: brk(a.handleListAdmins), Description: "관리자 목록", AdminOnly: true})
	reg.RegisterCommand("/set_groups", telegram.Command{Handler: brk(a.handleSetGroups), Description: "필수 가입 그룹 설정", AdminOnly: true})
	reg.RegisterCommand("/lottery", telegram.Command{Handler: brk(a.handleLottery), Description: "추첨 시작", AdminOnly: true})
	reg.RegisterCommand("/lottery_end", telegram.Command{Handler: brk(a.handleLotteryEnd), Description: "추첨 종료 및 당첨자 발표", AdminOnly: true})
	reg.RegisterCommand("/bot_on", telegram.Command{Handler: brk(a.handleBotOn), Description: "봇 켜기", AdminOnly: true})
	reg.RegisterCommand("/bot_off", telegram.Command{Handler: brk(a.handleBotOff), Description: "봇 끄기", AdminOnly: true})
	reg.RegisterCommand("/bot_status", telegram.Command{Handler: brk(a.handleBotStatus), Description: "봇 상태 확인", AdminOnly: true})
}
