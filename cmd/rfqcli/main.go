// Command rfqcli is the terminal frontend of the RFQ marketplace client:
// login and role switching, posting RFQs, bidding, awarding, payment and
// feedback, all driven through the core form sessions.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/tradebridge/rfq-marketplace/internal/core/domain"
	"github.com/tradebridge/rfq-marketplace/internal/core/ports"
	"github.com/tradebridge/rfq-marketplace/internal/core/service"
	"github.com/tradebridge/rfq-marketplace/internal/infrastructure/api"
	"github.com/tradebridge/rfq-marketplace/internal/infrastructure/storage/sqlite"
	"github.com/tradebridge/rfq-marketplace/internal/pkg/config"
	"github.com/tradebridge/rfq-marketplace/pkg/logger"
)

const usage = `usage: rfqcli <command> [flags]

commands:
  login        -email -password
  logout
  whoami
  switch-role  -role buyer|seller
  rfq          post|edit|list|mine|delete|download
  bid          create|edit|list|for-rfq|award|delete|download
  product      add|list|delete
  tx           create|list|pay
  feedback     add|list
`

type app struct {
	cfg      *config.Client
	log      zerolog.Logger
	client   *api.Client
	sessions *service.SessionService
	gate     *service.Gate
}

// consoleNotifier prints user notifications on the terminal.
type consoleNotifier struct{}

func (consoleNotifier) Success(msg string) { fmt.Println("ok:", msg) }
func (consoleNotifier) Error(msg string)   { fmt.Fprintln(os.Stderr, "error:", msg) }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadClient(ctx)
	if err != nil {
		l := logger.Init(logger.Options{})
		l.Fatal().Err(err).Msg("configuration error")
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	client := api.NewClient(cfg.APIBaseURL, log)
	store, err := sqlite.Open(cfg.StorePath)
	if err != nil {
		log.Fatal().Err(err).Msg("session store error")
	}
	defer store.Close()

	sessions := service.NewSessionService(client, client, store, client, consoleNotifier{}, log, cfg.RefreshInterval, stop)
	if err := sessions.Restore(ctx); err != nil {
		log.Debug().Err(err).Msg("no session restored")
	}
	sessions.StartAutoRefresh(ctx)

	a := &app{cfg: cfg, log: log, client: client, sessions: sessions, gate: service.NewGate()}
	if err := a.run(ctx, os.Args[1:]); err != nil {
		if !errors.Is(err, domain.ErrValidationFailed) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("missing command")
	}

	switch args[0] {
	case "login":
		return a.login(ctx, args[1:])
	case "logout":
		return a.sessions.Logout(ctx)
	case "whoami":
		return a.whoami()
	case "switch-role":
		return a.switchRole(ctx, args[1:])
	case "rfq":
		return a.rfqCommand(ctx, args[1:])
	case "bid":
		return a.bidCommand(ctx, args[1:])
	case "product":
		return a.productCommand(ctx, args[1:])
	case "tx":
		return a.txCommand(ctx, args[1:])
	case "feedback":
		return a.feedbackCommand(ctx, args[1:])
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args) //nolint:errcheck

	// Validation failures never reach the network.
	if errs := a.gate.Account(service.AccountForm{Email: *email, Password: *password}); len(errs) > 0 {
		printFieldErrors(errs)
		return domain.ErrValidationFailed
	}

	if err := a.sessions.Login(ctx, *email, *password); err != nil {
		return err
	}
	return a.whoami()
}

func (a *app) whoami() error {
	sess := a.sessions.Current()
	if !sess.Authenticated() {
		fmt.Println("not logged in")
		return nil
	}
	fmt.Printf("%s (%s) acting as %s\n", sess.DisplayName, sess.UserID, sess.ActiveRole)
	return nil
}

func (a *app) switchRole(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("switch-role", flag.ExitOnError)
	role := fs.String("role", "", "buyer or seller")
	fs.Parse(args) //nolint:errcheck

	return a.sessions.SwitchRole(ctx, domain.Role(*role))
}

func (a *app) rfqCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("rfq: missing subcommand")
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "post", "edit":
		return a.rfqSubmit(ctx, sub, rest)
	case "list":
		rfqs, err := a.client.ListOpenRFQs(ctx)
		if err != nil {
			return err
		}
		return printJSON(rfqs)
	case "mine":
		user, err := a.requireUser()
		if err != nil {
			return err
		}
		rfqs, err := a.client.ListRFQsByBuyer(ctx, user.UserID)
		if err != nil {
			return err
		}
		return printJSON(rfqs)
	case "delete":
		fs := flag.NewFlagSet("rfq delete", flag.ExitOnError)
		id := fs.String("id", "", "rfq id")
		fs.Parse(rest) //nolint:errcheck
		return a.client.DeleteRFQ(ctx, *id)
	case "download":
		fs := flag.NewFlagSet("rfq download", flag.ExitOnError)
		id := fs.String("id", "", "rfq id")
		file := fs.String("file", "", "stored file name")
		out := fs.String("out", "", "output path (defaults to the file name)")
		fs.Parse(rest) //nolint:errcheck
		return a.download(ctx, *out, *file, func() ([]byte, error) {
			return a.client.DownloadRFQFile(ctx, *id, *file)
		})
	default:
		return fmt.Errorf("rfq: unknown subcommand %q", sub)
	}
}

func (a *app) rfqSubmit(ctx context.Context, sub string, args []string) error {
	fs := flag.NewFlagSet("rfq "+sub, flag.ExitOnError)
	id := fs.String("id", "", "rfq id (edit only)")
	title := fs.String("title", "", "rfq title")
	description := fs.String("description", "", "free-text description")
	quantity := fs.String("quantity", "0", "requested quantity")
	unit := fs.String("unit", string(domain.UnitPieces), "unit of measure")
	purchaseNumber := fs.String("purchase-number", "", "internal purchase number")
	deadline := fs.String("deadline", "", "bidding deadline (YYYY-MM-DD)")
	auctionDoc := fs.String("auction-doc", "", "auction document path")
	guidelineDoc := fs.String("guideline-doc", "", "guideline document path")
	fs.Parse(args) //nolint:errcheck

	user, err := a.requireUser()
	if err != nil {
		return err
	}

	var sess *service.RFQSession
	if sub == "post" {
		sess = service.NewRFQCreateSession(a.client, a.gate, consoleNotifier{}, a.log, user.UserID)
	} else {
		sess = service.NewRFQEditSession(a.client, a.gate, consoleNotifier{}, a.log, *id)
		if err := sess.Load(ctx); err != nil {
			return err
		}
	}

	fields := sess.Fields()
	if sub == "post" || *title != "" {
		fields.Title = *title
	}
	if sub == "post" || *description != "" {
		fields.Description = *description
	}
	if sub == "post" || *quantity != "0" {
		fields.Quantity = *quantity
	}
	fields.Unit = domain.Unit(*unit)
	if sub == "post" || *purchaseNumber != "" {
		fields.PurchaseNumber = *purchaseNumber
	}
	if sub == "post" || *deadline != "" {
		fields.Deadline = *deadline
	}
	if err := sess.SetFields(fields); err != nil {
		return err
	}

	if *auctionDoc != "" {
		att, err := loadAttachment(*auctionDoc)
		if err != nil {
			return err
		}
		if err := sess.AttachAuctionDoc(att); err != nil {
			return err
		}
	}
	if *guidelineDoc != "" {
		att, err := loadAttachment(*guidelineDoc)
		if err != nil {
			return err
		}
		if err := sess.AttachGuidelineDoc(att); err != nil {
			return err
		}
	}

	rfq, err := sess.Submit(ctx)
	if err != nil {
		printFieldErrors(sess.Errors())
		return err
	}
	if sess.Policy() == service.LeaveForm {
		return a.rfqCommand(ctx, []string{"mine"})
	}
	return printJSON(rfq)
}

func (a *app) bidCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("bid: missing subcommand")
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "create", "edit":
		return a.bidSubmit(ctx, sub, rest)
	case "list":
		user, err := a.requireUser()
		if err != nil {
			return err
		}
		bids, err := a.client.ListBidsBySeller(ctx, user.UserID)
		if err != nil {
			return err
		}
		return printJSON(bids)
	case "for-rfq":
		fs := flag.NewFlagSet("bid for-rfq", flag.ExitOnError)
		rfqID := fs.String("rfq", "", "rfq id")
		fs.Parse(rest) //nolint:errcheck
		bids, err := a.client.ListBidsByRFQ(ctx, *rfqID)
		if err != nil {
			return err
		}
		return printJSON(bids)
	case "award":
		fs := flag.NewFlagSet("bid award", flag.ExitOnError)
		id := fs.String("id", "", "bid id")
		fs.Parse(rest) //nolint:errcheck
		bid, err := a.client.AwardBid(ctx, *id)
		if err != nil {
			return err
		}
		return printJSON(bid)
	case "delete":
		fs := flag.NewFlagSet("bid delete", flag.ExitOnError)
		id := fs.String("id", "", "bid id")
		fs.Parse(rest) //nolint:errcheck
		return a.client.DeleteBid(ctx, *id)
	case "download":
		fs := flag.NewFlagSet("bid download", flag.ExitOnError)
		id := fs.String("id", "", "bid id")
		file := fs.String("file", "", "stored file name")
		out := fs.String("out", "", "output path (defaults to the file name)")
		fs.Parse(rest) //nolint:errcheck
		return a.download(ctx, *out, *file, func() ([]byte, error) {
			return a.client.DownloadBidFile(ctx, *id, *file)
		})
	default:
		return fmt.Errorf("bid: unknown subcommand %q", sub)
	}
}

func (a *app) bidSubmit(ctx context.Context, sub string, args []string) error {
	fs := flag.NewFlagSet("bid "+sub, flag.ExitOnError)
	id := fs.String("id", "", "bid id (edit only)")
	rfqID := fs.String("rfq", "", "rfq id (create only)")
	itemsPath := fs.String("items", "", "path to a JSON file of line items")
	filePath := fs.String("file", "", "bid document path (zip)")
	notes := fs.String("notes", "", "free-text notes")
	fs.Parse(args) //nolint:errcheck

	user, err := a.requireUser()
	if err != nil {
		return err
	}

	var sess *service.BidSession
	if sub == "create" {
		sess = service.NewBidCreateSession(a.client, a.gate, consoleNotifier{}, a.log, user.UserID, *rfqID)
	} else {
		sess = service.NewBidEditSession(a.client, a.gate, consoleNotifier{}, a.log, *id)
		if err := sess.Load(ctx); err != nil {
			return err
		}
	}

	if *itemsPath != "" {
		drafts, err := loadItems(*itemsPath)
		if err != nil {
			return err
		}
		// Replace the whole item list through the session's own transitions.
		for len(sess.Items()) > 0 {
			if err := sess.RequestRemoveItem(0); err != nil {
				return err
			}
			sess.ConfirmRemoval()
		}
		for i, d := range drafts {
			if err := sess.AddItem(); err != nil {
				return err
			}
			for field, value := range map[service.ItemField]string{
				service.FieldName:         d.Name,
				service.FieldQuantity:     d.Quantity,
				service.FieldUnit:         string(d.Unit),
				service.FieldUnitPrice:    d.UnitPrice,
				service.FieldTransportFee: d.TransportFee,
				service.FieldTaxes:        d.Taxes,
			} {
				if err := sess.SetItemField(i, field, value); err != nil {
					return err
				}
			}
		}
	}

	if *notes != "" {
		if err := sess.SetNotes(*notes); err != nil {
			return err
		}
	}
	if *filePath != "" {
		att, err := loadAttachment(*filePath)
		if err != nil {
			return err
		}
		if err := sess.AttachFile(att); err != nil {
			return err
		}
	}

	fmt.Printf("grand total: %.2f\n", sess.GrandTotal())
	bid, err := sess.Submit(ctx)
	if err != nil {
		printFieldErrors(sess.Errors())
		return err
	}
	if sess.Policy() == service.LeaveForm {
		return a.bidCommand(ctx, []string{"list"})
	}
	return printJSON(bid)
}

func (a *app) productCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("product: missing subcommand")
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "add":
		fs := flag.NewFlagSet("product add", flag.ExitOnError)
		name := fs.String("name", "", "product name")
		description := fs.String("description", "", "free-text description")
		price := fs.String("price", "0", "unit price")
		unit := fs.String("unit", string(domain.UnitPieces), "unit of measure")
		fs.Parse(rest) //nolint:errcheck

		user, err := a.requireUser()
		if err != nil {
			return err
		}
		product, err := a.client.CreateProduct(ctx, user.UserID, ports.ProductPayload{
			Name:        *name,
			Description: *description,
			UnitPrice:   domain.ParseAmount(*price),
			Unit:        domain.Unit(*unit),
		})
		if err != nil {
			return err
		}
		return printJSON(product)
	case "list":
		fs := flag.NewFlagSet("product list", flag.ExitOnError)
		seller := fs.String("seller", "", "seller id (defaults to the current user)")
		fs.Parse(rest) //nolint:errcheck

		sellerID := *seller
		if sellerID == "" {
			user, err := a.requireUser()
			if err != nil {
				return err
			}
			sellerID = user.UserID
		}
		products, err := a.client.ListProducts(ctx, sellerID)
		if err != nil {
			return err
		}
		return printJSON(products)
	case "delete":
		fs := flag.NewFlagSet("product delete", flag.ExitOnError)
		id := fs.String("id", "", "product id")
		fs.Parse(rest) //nolint:errcheck
		return a.client.DeleteProduct(ctx, *id)
	default:
		return fmt.Errorf("product: unknown subcommand %q", sub)
	}
}

func (a *app) txCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("tx: missing subcommand")
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "create":
		fs := flag.NewFlagSet("tx create", flag.ExitOnError)
		bidID := fs.String("bid", "", "awarded bid id")
		fs.Parse(rest) //nolint:errcheck
		tx, err := a.client.CreateTransaction(ctx, *bidID)
		if err != nil {
			return err
		}
		return printJSON(tx)
	case "list":
		user, err := a.requireUser()
		if err != nil {
			return err
		}
		txs, err := a.client.ListTransactions(ctx, user.UserID)
		if err != nil {
			return err
		}
		sort.Slice(txs, func(i, j int) bool { return txs[i].CreatedAt.After(txs[j].CreatedAt) })
		return printJSON(txs)
	case "pay":
		fs := flag.NewFlagSet("tx pay", flag.ExitOnError)
		id := fs.String("id", "", "transaction id")
		fs.Parse(rest) //nolint:errcheck
		checkout, err := a.client.InitiatePayment(ctx, *id)
		if err != nil {
			return err
		}
		fmt.Println("checkout:", checkout)
		return nil
	default:
		return fmt.Errorf("tx: unknown subcommand %q", sub)
	}
}

func (a *app) feedbackCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("feedback: missing subcommand")
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "add":
		fs := flag.NewFlagSet("feedback add", flag.ExitOnError)
		txID := fs.String("tx", "", "transaction id")
		rating := fs.Int("rating", 0, "rating 1-5")
		comment := fs.String("comment", "", "free-text comment")
		fs.Parse(rest) //nolint:errcheck
		fb, err := a.client.CreateFeedback(ctx, ports.FeedbackPayload{
			TransactionID: *txID,
			Rating:        *rating,
			Comment:       *comment,
		})
		if err != nil {
			return err
		}
		return printJSON(fb)
	case "list":
		fs := flag.NewFlagSet("feedback list", flag.ExitOnError)
		seller := fs.String("seller", "", "seller id")
		fs.Parse(rest) //nolint:errcheck
		fbs, err := a.client.ListFeedbackBySeller(ctx, *seller)
		if err != nil {
			return err
		}
		return printJSON(fbs)
	default:
		return fmt.Errorf("feedback: unknown subcommand %q", sub)
	}
}

func (a *app) requireUser() (domain.Session, error) {
	sess := a.sessions.Current()
	if !sess.Authenticated() {
		return domain.Session{}, domain.ErrNotAuthenticated
	}
	return sess, nil
}

// download fetches a stored document and writes it to disk.
func (a *app) download(_ context.Context, out, fileName string, fetch func() ([]byte, error)) error {
	data, err := fetch()
	if err != nil {
		return err
	}
	if out == "" {
		out = fileName
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write download: %w", err)
	}
	fmt.Println("saved:", out)
	return nil
}

func loadItems(path string) ([]domain.LineItemDraft, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read items file: %w", err)
	}
	var drafts []domain.LineItemDraft
	if err := json.Unmarshal(raw, &drafts); err != nil {
		return nil, fmt.Errorf("parse items file: %w", err)
	}
	return drafts, nil
}

func loadAttachment(path string) (domain.Attachment, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("read attachment: %w", err)
	}
	name := filepath.Base(path)
	return domain.Attachment{
		FileName:    name,
		ContentType: mime.TypeByExtension(filepath.Ext(name)),
		Content:     content,
	}, nil
}

func printFieldErrors(errs domain.ErrorMap) {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", k, errs[k])
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
