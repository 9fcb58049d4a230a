package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/covenant-ledger/covenant/internal/domain/vault"
)

// LedgerService defines the ledger operations needed by MCP.
type LedgerService interface {
	CreateProject(ctx context.Context, caller string, req vault.CreateProjectRequest) (*vault.Project, error)
	UpdateConfig(ctx context.Context, caller string, id int64, cfg vault.ConfigParams) error
	PauseProject(ctx context.Context, caller string, id int64) error
	UnpauseProject(ctx context.Context, caller string, id int64) error
	DepositEscrow(ctx context.Context, caller string, id int64, amount uint64) error
	WithdrawReward(ctx context.Context, caller string, id int64) (uint64, error)
	RecordResult(ctx context.Context, caller string, req vault.ResultRequest) (*vault.ResultRecord, error)
	AllocateBounty(ctx context.Context, caller string, id int64, claimant string, amount uint64, evidenceHash string) error
	ClaimBounty(ctx context.Context, caller string, id int64) (uint64, error)
	SetAdministrator(ctx context.Context, caller, addr string) error
	SetReporter(ctx context.Context, caller, addr string) error
	PauseGlobal(ctx context.Context, caller string) error
	UnpauseGlobal(ctx context.Context, caller string) error

	GetProject(ctx context.Context, id int64) (*vault.Project, error)
	ListProjects(ctx context.Context) ([]vault.Project, error)
	GetBalances(ctx context.Context, id int64) (vault.Balances, error)
	GetMetrics(ctx context.Context, id int64) (vault.Metrics, error)
	GetClaim(ctx context.Context, projectID int64, claimant string) (*vault.Claim, error)
	ListEvents(ctx context.Context, opts vault.ListEventsOptions) ([]vault.Event, error)
	GetGlobals(ctx context.Context) (*vault.Globals, error)
}

// Config contains server configuration.
type Config struct {
	Service       LedgerService
	Resolver      ActorResolver
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	DefaultActor  string // caller identity when auth is disabled and no bearer is sent
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "covenant",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio mode: always disable auth (local dev only)
	if cfg.TransportMode == "stdio" || !cfg.AuthEnabled {
		server.AddReceivingMiddleware(noAuthMiddleware(cfg.DefaultActor))
	} else {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Service)

	return server
}
