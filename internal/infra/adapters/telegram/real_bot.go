package telegram

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-offers-bot/internal/config"
	"telegram-offers-bot/internal/domain/ports/adapter"
	derror "telegram-offers-bot/internal/error"
	"telegram-offers-bot/internal/infra/metrics"
	"telegram-offers-bot/internal/usecase"
)

const (
	msgNoFeedURL       = "Error: URL de la hoja de cálculo no configurada."
	msgFeedUnreachable = "No se pudo acceder a los datos. Intenta más tarde."
	msgNotAllowed      = "No tienes permiso para usar este comando."
)

var _ adapter.BotAdapter = (*RealBotAdapter)(nil)

// RealBotAdapter polls Telegram with tgbotapi and routes commands and inline
// callbacks to the query/refresh use cases. It is also the delivery adapter:
// SendProduct applies the drive-link rewrite, the image fallback and the
// admin escalation discipline.
type RealBotAdapter struct {
	bot        *tgbotapi.BotAPI
	cfg        *config.Config
	refreshUC  *usecase.RefreshUseCase
	queryUC    *usecase.QueryUseCase
	taxonomyUC *usecase.TaxonomyUseCase
	log        *zerolog.Logger

	adminIDsMap   map[int64]struct{}
	updateWorkers int
	cancelPolling context.CancelFunc
}

func NewRealBotAdapter(cfg *config.Config, logger *zerolog.Logger) (*RealBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		return nil, err
	}

	adminMap := make(map[int64]struct{}, len(cfg.Bot.AdminIDs))
	for _, id := range cfg.Bot.AdminIDs {
		adminMap[id] = struct{}{}
	}

	compLog := logger.With().Str("component", "RealBotAdapter").Logger()
	return &RealBotAdapter{
		bot:           bot,
		cfg:           cfg,
		log:           &compLog,
		adminIDsMap:   adminMap,
		updateWorkers: cfg.Bot.Workers,
	}, nil
}

// Bind attaches the use cases after construction. The bot adapter and the
// use cases depend on each other (use cases deliver through the adapter),
// so wiring happens in two steps in main.
func (r *RealBotAdapter) Bind(refreshUC *usecase.RefreshUseCase, queryUC *usecase.QueryUseCase, taxonomyUC *usecase.TaxonomyUseCase) {
	r.refreshUC = refreshUC
	r.queryUC = queryUC
	r.taxonomyUC = taxonomyUC
}

// StartPolling begins polling Telegram for updates concurrently.
// It runs until ctx is canceled.
func (r *RealBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-updateChan:
					if err := r.handleUpdate(ctx, up); err != nil {
						r.log.Error().Err(err).Int("worker", id).Msg("update handling failed")
					}
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			r.bot.StopReceivingUpdates()
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			updateChan <- up
		}
	}
}

// StopPolling stops the polling loop gracefully.
func (r *RealBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

// ---- delivery port ----

func (r *RealBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealBotAdapter) SendHTML(ctx context.Context, chatID int64, html string) error {
	msg := tgbotapi.NewMessage(chatID, html)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := r.bot.Send(msg)
	return err
}

// SendProduct delivers one rendered product. A usable image goes out as a
// photo with the HTML caption; if Telegram rejects it the same text is
// re-sent text-only. A failure of the final attempt escalates to the admin,
// unless the failing destination IS an admin chat (swallowed, logged only,
// to avoid error loops).
func (r *RealBotAdapter) SendProduct(ctx context.Context, chatID int64, html string, imageURL string) error {
	imageURL = rewriteDriveURL(imageURL)

	var err error
	if usableImageURL(imageURL) {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(imageURL))
		photo.Caption = html
		photo.ParseMode = tgbotapi.ModeHTML
		if _, err = r.bot.Send(photo); err == nil {
			return nil
		}
		metrics.ImageFallback()
		r.log.Warn().Err(err).Str("image", imageURL).Msg("image send failed, falling back to text")
	}

	if err = r.SendHTML(ctx, chatID, html); err == nil {
		return nil
	}
	metrics.DeliveryFailed()

	if r.isAdmin(chatID) {
		r.log.Error().Err(err).Int64("chat", chatID).Msg("delivery to admin failed, swallowing")
		return nil
	}
	_ = r.NotifyAdmin(ctx, fmt.Sprintf("Error enviando mensaje a %d: %v", chatID, err))
	return err
}

func (r *RealBotAdapter) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		kbRow := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			var kb tgbotapi.InlineKeyboardButton
			switch {
			case btn.URL != "":
				kb = tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL)
			case btn.Data != "":
				kb = tgbotapi.NewInlineKeyboardButtonData(label, btn.Data)
			default:
				kb = tgbotapi.NewInlineKeyboardButtonData(label, label)
			}
			kbRow = append(kbRow, kb)
		}
		kbRows = append(kbRows, kbRow)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(kbRows...)
	_, err := r.bot.Send(msg)
	return err
}

// NotifyAdmin is the terminal error sink: best-effort message to the first
// configured admin, failures logged and never escalated further.
func (r *RealBotAdapter) NotifyAdmin(ctx context.Context, text string) error {
	if len(r.cfg.Bot.AdminIDs) == 0 {
		r.log.Warn().Str("text", text).Msg("no admin configured, dropping notice")
		return nil
	}
	adminID := r.cfg.Bot.AdminIDs[0]
	if err := r.SendMessage(ctx, adminID, "⚠️ Bot error:\n"+text); err != nil {
		r.log.Error().Err(err).Msg("admin notification failed")
	}
	return nil
}

// ---- updates ----

func (r *RealBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.CallbackQuery != nil {
		return r.handleCallback(ctx, update.CallbackQuery)
	}
	if update.Message == nil || update.Message.From == nil {
		return nil
	}

	msg := update.Message
	chatID := msg.Chat.ID
	if !msg.IsCommand() {
		return r.SendMessage(ctx, chatID, "No entiendo ese mensaje. Usa /help para ver los comandos.")
	}

	metrics.CommandServed(msg.Command())
	switch msg.Command() {
	case "start":
		return r.SendMessage(ctx, chatID,
			"¡Bienvenido al Bot de Ofertas! 🎉\n\n"+
				"Este bot te permite buscar productos y sus descuentos.\n\n"+
				"Comandos disponibles:\n"+
				"/ofertas - Ver productos por rango de descuento\n"+
				"/buscar [término] - Buscar productos por palabra clave\n"+
				"/categoria - Ver productos por categoría\n"+
				"/objetivo - Ver productos por objetivo\n")

	case "help":
		return r.SendHTML(ctx, chatID,
			"🆘 <b>Ayuda - Comandos disponibles:</b>\n\n"+
				"🔹 <b>/start</b> - Muestra el mensaje de bienvenida\n"+
				"🔹 <b>/help</b> - Muestra esta ayuda\n"+
				"🔹 <b>/ofertas</b> - Muestra productos por rango de descuento\n"+
				"🔹 <b>/buscar [término]</b> - Busca productos por palabra clave\n"+
				"🔹 <b>/categoria</b> - Muestra productos por categoría\n"+
				"🔹 <b>/objetivo</b> - Muestra productos por objetivo\n\n"+
				"📌 <b>Ejemplos:</b>\n"+
				"<code>/buscar proteína</code> - Busca productos con \"proteína\"\n"+
				"<code>/ofertas</code> - Muestra productos con descuento")

	case "ofertas":
		return r.sendDiscountMenu(ctx, chatID)

	case "buscar":
		term := strings.TrimSpace(msg.CommandArguments())
		if term == "" {
			return r.SendMessage(ctx, chatID,
				"Por favor, especifica un término de búsqueda después de /buscar.\n"+
					"Ejemplo: /buscar proteína")
		}
		return r.runSearch(ctx, chatID, term)

	case "categoria":
		return r.sendTaxonomyMenu(ctx, chatID, taxonomyCategories)

	case "objetivo":
		return r.sendTaxonomyMenu(ctx, chatID, taxonomyObjectives)

	case "force_update":
		if !r.isAdmin(msg.From.ID) {
			return r.SendMessage(ctx, chatID, msgNotAllowed)
		}
		if err := r.SendMessage(ctx, chatID, "Forzando actualización..."); err != nil {
			return err
		}
		if err := r.refreshUC.Run(ctx); err != nil {
			return r.SendMessage(ctx, chatID, "La actualización falló. Revisa los logs.")
		}
		return r.SendMessage(ctx, chatID, "Actualización completada.")

	default:
		return r.SendMessage(ctx, chatID, "Comando desconocido. Usa /help para ver los comandos.")
	}
}

func (r *RealBotAdapter) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query.From == nil {
		return errors.New("invalid callback query")
	}
	// Stop the telegram spinner when we return.
	defer func() { _, _ = r.bot.Request(tgbotapi.NewCallback(query.ID, "")) }()

	var chatID int64
	if query.Message != nil && query.Message.Chat != nil {
		chatID = query.Message.Chat.ID
	} else {
		chatID = query.From.ID
	}
	if chatID == 0 {
		return nil
	}

	// Status replies edit the menu message the button lived on.
	edit := func(text string) error {
		if query.Message == nil {
			return r.SendMessage(ctx, chatID, text)
		}
		_, err := r.bot.Send(tgbotapi.NewEditMessageText(chatID, query.Message.MessageID, text))
		return err
	}

	data := strings.TrimSpace(query.Data)
	switch {
	case strings.HasPrefix(data, "discount_"):
		metrics.CommandServed("cb:discount")
		label := strings.TrimPrefix(data, "discount_")
		bracket, ok := usecase.BracketByLabel(label)
		if !ok {
			return edit("Rango de descuento desconocido.")
		}
		return r.runQuery(ctx, chatID,
			usecase.InDiscountBracket(bracket), usecase.KindNone,
			usecase.ResultText{
				Found: func(n int) string {
					return fmt.Sprintf("Encontrados %d productos con descuento en el rango %s%%.\nEnviando productos...", n, bracket.Label)
				},
				Done: func(n int) string {
					return fmt.Sprintf("✅ Se han enviado todos los %d productos con descuento en el rango %s%%.", n, bracket.Label)
				},
			},
			fmt.Sprintf("No se encontraron productos con descuentos en el rango %s%%.", bracket.Label),
			edit)

	case strings.HasPrefix(data, "cat_"):
		metrics.CommandServed("cb:categoria")
		cat := strings.TrimPrefix(data, "cat_")
		return r.runQuery(ctx, chatID,
			usecase.InCategory(cat), usecase.KindNone,
			usecase.ResultText{
				Found: func(n int) string {
					return fmt.Sprintf("Encontrados %d productos en la categoría '%s'.\nEnviando productos...", n, cat)
				},
				Done: func(n int) string {
					return fmt.Sprintf("✅ Se han enviado todos los %d productos de la categoría '%s'.", n, cat)
				},
			},
			fmt.Sprintf("No se encontraron productos en la categoría '%s'.", cat),
			edit)

	case strings.HasPrefix(data, "obj_"):
		metrics.CommandServed("cb:objetivo")
		obj := strings.TrimPrefix(data, "obj_")
		return r.runQuery(ctx, chatID,
			usecase.HasObjective(obj), usecase.KindNone,
			usecase.ResultText{
				Found: func(n int) string {
					return fmt.Sprintf("Encontrados %d productos con el objetivo '%s'.\nEnviando productos...", n, obj)
				},
				Done: func(n int) string {
					return fmt.Sprintf("✅ Se han enviado todos los %d productos con el objetivo '%s'.", n, obj)
				},
			},
			fmt.Sprintf("No se encontraron productos con el objetivo '%s'.", obj),
			edit)
	}
	return fmt.Errorf("unknown callback data %q", data)
}

// runQuery maps the use case outcome onto the three user-visible results:
// unreachable source, zero matches, or streamed results with framing.
func (r *RealBotAdapter) runQuery(
	ctx context.Context,
	chatID int64,
	pred usecase.Predicate,
	kind usecase.ChangeKind,
	text usecase.ResultText,
	emptyMsg string,
	respond func(string) error,
) error {
	n, err := r.queryUC.Run(ctx, chatID, pred, kind, text)
	switch {
	case errors.Is(err, derror.ErrFeedURLMissing):
		return respond(msgNoFeedURL)
	case err != nil:
		return respond(msgFeedUnreachable)
	case n == 0:
		return respond(emptyMsg)
	}
	return nil
}

func (r *RealBotAdapter) runSearch(ctx context.Context, chatID int64, term string) error {
	return r.runQuery(ctx, chatID,
		usecase.MatchesText(term), usecase.KindSearch,
		usecase.ResultText{
			Found: func(n int) string {
				return fmt.Sprintf("Encontrados %d productos que coinciden con '%s'.\nEnviando resultados...", n, term)
			},
			Done: func(n int) string {
				return fmt.Sprintf("✅ Se han enviado todos los %d productos que coinciden con '%s'.", n, term)
			},
		},
		fmt.Sprintf("No se encontraron productos que coincidan con '%s'.", term),
		func(s string) error { return r.SendMessage(ctx, chatID, s) })
}

// ---- menus ----

func (r *RealBotAdapter) sendDiscountMenu(ctx context.Context, chatID int64) error {
	rows := [][]adapter.InlineButton{
		{
			{Text: "0-10%", Data: "discount_0-10"},
			{Text: "10-20%", Data: "discount_10-20"},
		},
		{
			{Text: "20-30%", Data: "discount_20-30"},
			{Text: "30-50%", Data: "discount_30-50"},
		},
		{
			{Text: "Más del 50%", Data: "discount_50+"},
		},
	}
	return r.SendButtons(ctx, chatID, "Selecciona el rango de descuento que quieres ver:", rows)
}

type taxonomyKind int

const (
	taxonomyCategories taxonomyKind = iota
	taxonomyObjectives
)

func (r *RealBotAdapter) sendTaxonomyMenu(ctx context.Context, chatID int64, kind taxonomyKind) error {
	tax, err := r.taxonomyUC.Current(ctx)
	if errors.Is(err, derror.ErrFeedURLMissing) {
		return r.SendMessage(ctx, chatID, msgNoFeedURL)
	}
	if err != nil {
		return r.SendMessage(ctx, chatID, msgFeedUnreachable)
	}

	values := tax.Categories
	prefix := "cat_"
	prompt := "Selecciona una categoría para ver sus productos:"
	empty := "No se encontraron categorías."
	if kind == taxonomyObjectives {
		values = tax.Objectives
		prefix = "obj_"
		prompt = "Selecciona un objetivo para ver sus productos:"
		empty = "No se encontraron objetivos."
	}
	if len(values) == 0 {
		return r.SendMessage(ctx, chatID, empty)
	}

	// Two buttons per row.
	var rows [][]adapter.InlineButton
	var row []adapter.InlineButton
	for _, v := range values {
		row = append(row, adapter.InlineButton{Text: v, Data: prefix + v})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return r.SendButtons(ctx, chatID, prompt, rows)
}

// ---- helpers ----

func (r *RealBotAdapter) isAdmin(id int64) bool {
	_, ok := r.adminIDsMap[id]
	return ok
}

var driveFileRe = regexp.MustCompile(`/d/([^/]+)/`)

// rewriteDriveURL turns a Google Drive "file view" share link into the
// direct-content form Telegram can fetch. Other URLs pass through untouched.
func rewriteDriveURL(u string) string {
	if !strings.Contains(u, "drive.google.com/file/d/") {
		return u
	}
	m := driveFileRe.FindStringSubmatch(u)
	if m == nil {
		return u
	}
	return "https://drive.google.com/uc?export=view&id=" + m[1]
}

func usableImageURL(u string) bool {
	u = strings.TrimSpace(u)
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}
