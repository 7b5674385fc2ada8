package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"helpdesk-assistant/internal/agents/intentrouter"
	"helpdesk-assistant/internal/agents/knowledgesearch"
	"helpdesk-assistant/internal/agents/notify"
	"helpdesk-assistant/internal/agents/ticketdetails"
	"helpdesk-assistant/internal/agents/ticketsubmit"
	"helpdesk-assistant/internal/agents/websearch"
	"helpdesk-assistant/internal/common/aws"
	"helpdesk-assistant/internal/common/config"
	"helpdesk-assistant/internal/common/database"
	"helpdesk-assistant/internal/common/genai"
	"helpdesk-assistant/internal/common/logger"
	"helpdesk-assistant/internal/common/observability"
	"helpdesk-assistant/internal/common/servicenow"
	"helpdesk-assistant/internal/orchestrator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	log.Info("starting helpdesk assistant", map[string]interface{}{
		"environment":    cfg.App.Environment,
		"routingMode":    cfg.Routing.Mode,
		"extractionMode": cfg.Extraction.Mode,
	})

	if !cfg.ServiceNow.Configured() {
		log.Warn("ServiceNow credentials not configured, ticket submission will fail", nil)
	}

	// --- Shared clients ---

	var inferrer genai.Inferencer
	if cfg.APIs.GenAI.BaseURL != "" {
		inferrer = genai.NewClient(cfg.APIs.GenAI)
	}

	esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		log.Error("failed to create elasticsearch client", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	if err := esClient.Ping(); err != nil {
		log.Warn("elasticsearch unreachable, knowledge lookups will fail", map[string]interface{}{
			"error": err.Error(),
		})
	}

	redisClient, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		log.Error("failed to create redis client", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer redisClient.Close()

	// --- Agents ---

	routerCfg := intentrouter.LoadConfig()
	routerCfg.Mode = cfg.Routing.Mode
	router := intentrouter.NewHandler(routerCfg, inferrer, &intentRouterLoggerAdapter{log})

	knowledgeCfg := knowledgesearch.LoadConfig()
	knowledgeCfg.Index = cfg.Knowledge.Index
	knowledgeCfg.MaxResults = cfg.Knowledge.MaxResults
	knowledgeCfg.CacheTTL = config.GetDuration(cfg.Knowledge.CacheTTL)
	knowledge := knowledgesearch.NewHandler(knowledgeCfg, esClient.Client, redisClient.Client,
		&knowledgeSearchLoggerAdapter{log})

	webCfg := websearch.LoadConfig()
	webCfg.SearchAPIBaseURL = cfg.APIs.WebSearch.BaseURL
	webCfg.SearchAPIKey = cfg.APIs.WebSearch.APIKey
	webCfg.SearchEngineID = cfg.APIs.WebSearch.EngineID
	webCfg.Timeout = config.GetDuration(cfg.APIs.WebSearch.Timeout)
	web := websearch.NewHandler(webCfg, &webSearchLoggerAdapter{log})

	extractorCfg := ticketdetails.LoadConfig()
	extractorCfg.Mode = cfg.Extraction.Mode
	extractor := ticketdetails.NewHandler(extractorCfg, inferrer, &ticketDetailsLoggerAdapter{log})

	snClient := servicenow.NewClient(cfg.ServiceNow)
	submitter := ticketsubmit.NewHandler(
		ticketsubmit.LoadConfig(),
		cfg.ServiceNow,
		snClient,
		&ticketSubmitLoggerAdapter{log},
	)

	// --- Session store ---

	var sessions orchestrator.SessionStore
	if cfg.Sessions.Store == "redis" {
		sessions = orchestrator.NewRedisStore(redisClient.Client, config.GetDuration(cfg.Sessions.TTL))
	} else {
		sessions = orchestrator.NewMemoryStore()
	}

	// --- Orchestrator ---

	resolver := orchestrator.NewResolver(knowledge, web, &orchestratorLoggerAdapter{log})

	orchCfg := orchestrator.LoadConfig()
	orchCfg.Caller = cfg.Ticketing.Caller
	orchCfg.AssignmentGroup = cfg.Ticketing.AssignmentGroup
	orchCfg.Category = cfg.Ticketing.Category
	orchCfg.NotifyEmail = cfg.Notifications.Email.Recipient
	orchCfg.NotifyPhone = cfg.Notifications.SMS.Recipient

	orch := orchestrator.New(
		orchCfg,
		router,
		resolver,
		web,
		extractor,
		submitter,
		sessions,
		&orchestratorLoggerAdapter{log},
	)

	if notifier := buildNotifier(cfg, log); notifier != nil {
		orch.WithNotifier(notifier)
	}

	// --- Observability ---

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			log.Info("metrics endpoint listening", map[string]interface{}{
				"address": cfg.Metrics.Address,
			})
			if err := http.ListenAndServe(cfg.Metrics.Address, mux); err != nil {
				log.Error("metrics server stopped", map[string]interface{}{"error": err.Error()})
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down", nil)
		cancel()
		os.Exit(0)
	}()

	sessionID := uuid.New().String()

	// Single-question mode: arguments form one request, then exit.
	if len(os.Args) > 1 {
		question := strings.Join(os.Args[1:], " ")
		orch.StreamingRoute(ctx, question, sessionID, printProgress)
		fmt.Println()
		return
	}

	runREPL(ctx, orch, obs, sessionID)
}

func runREPL(ctx context.Context, orch *orchestrator.Orchestrator, obs *observability.Observability, sessionID string) {
	fmt.Println("Helpdesk assistant ready. Ask a question, request a ticket, or type 'exit'.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
			return
		}

		orch.StreamingRoute(ctx, line, sessionID, printProgress)
		obs.RecordRequestProcessed(ctx, "repl")
		fmt.Println()
	}
}

// printProgress writes milestones on their own lines and payload chunks
// inline as they arrive.
func printProgress(status string) {
	if strings.HasSuffix(status, "...") {
		fmt.Printf("[%s]\n", status)
		return
	}
	fmt.Print(status)
}

func buildNotifier(cfg *config.Config, log logger.Logger) orchestrator.Notifier {
	if !cfg.Notifications.Email.Enabled && !cfg.Notifications.SMS.Enabled {
		return nil
	}

	ctx := context.Background()
	sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		log.Warn("SES client unavailable, notifications disabled", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}
	snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		log.Warn("SNS client unavailable, notifications disabled", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	return notify.NewHandler(
		&notify.Config{
			EmailEnabled:     cfg.Notifications.Email.Enabled,
			SMSEnabled:       cfg.Notifications.SMS.Enabled,
			FromEmail:        cfg.Notifications.Email.FromEmail,
			UrgencyThreshold: cfg.Notifications.SMS.UrgencyThreshold,
		},
		sesClient,
		snsClient,
		&notifyLoggerAdapter{log},
	)
}

// ==========================
// Logger Adapters
// ==========================

type intentRouterLoggerAdapter struct {
	logger.Logger
}

func (a *intentRouterLoggerAdapter) With(fields map[string]interface{}) intentrouter.Logger {
	return &intentRouterLoggerAdapter{a.Logger.With(fields)}
}

type knowledgeSearchLoggerAdapter struct {
	logger.Logger
}

func (a *knowledgeSearchLoggerAdapter) With(fields map[string]interface{}) knowledgesearch.Logger {
	return &knowledgeSearchLoggerAdapter{a.Logger.With(fields)}
}

type webSearchLoggerAdapter struct {
	logger.Logger
}

func (a *webSearchLoggerAdapter) With(fields map[string]interface{}) websearch.Logger {
	return &webSearchLoggerAdapter{a.Logger.With(fields)}
}

type ticketDetailsLoggerAdapter struct {
	logger.Logger
}

func (a *ticketDetailsLoggerAdapter) With(fields map[string]interface{}) ticketdetails.Logger {
	return &ticketDetailsLoggerAdapter{a.Logger.With(fields)}
}

type ticketSubmitLoggerAdapter struct {
	logger.Logger
}

func (a *ticketSubmitLoggerAdapter) With(fields map[string]interface{}) ticketsubmit.Logger {
	return &ticketSubmitLoggerAdapter{a.Logger.With(fields)}
}

type notifyLoggerAdapter struct {
	logger.Logger
}

func (a *notifyLoggerAdapter) With(fields map[string]interface{}) notify.Logger {
	return &notifyLoggerAdapter{a.Logger.With(fields)}
}

type orchestratorLoggerAdapter struct {
	logger.Logger
}

func (a *orchestratorLoggerAdapter) With(fields map[string]interface{}) orchestrator.Logger {
	return &orchestratorLoggerAdapter{a.Logger.With(fields)}
}
