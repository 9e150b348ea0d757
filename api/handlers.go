/*
handlers.go - HTTP API handlers for the MegaScan lock engine

PURPOSE:
  Exposes vesting curves, lock scans, burn totals, token facts and local
  preferences as JSON. Handles request parsing and serialization and
  delegates to the vesting, locks, explorer and prefs packages.

ENDPOINTS:
  Curves:
    POST   /api/curves                          Curve of a posted schedule

  Locks:
    GET    /api/locks?limit=n                   Newest locks first
    GET    /api/locks/{id}                      Lock with curve and amounts
    GET    /api/locks/{id}/value?at=ts          Unlock fraction at ts

  Tokens:
    GET    /api/tokens/{address}                Explorer facts + burned total
    GET    /api/tokens/{address}/locks          Active locks (live scan)
    GET    /api/tokens/{address}/snapshot       Last cached scan
    GET    /api/tokens/{address}/developer      Deployer and dev status
    GET    /api/tokens/{address}/activity       Lock events per lock

  Addresses:
    GET    /api/addresses/{address}/locks       Locks created or received
    GET    /api/addresses/{address}/burns       Burn totals per token
    GET    /api/addresses/{address}/positions   Priced token balances

  Preferences:
    GET    /api/watchlist                       List watched tokens
    POST   /api/watchlist                       Watch a token
    DELETE /api/watchlist/{address}             Unwatch
    GET    /api/profiles/{address}              Read profile
    PUT    /api/profiles/{address}              Write profile

ERROR HANDLING:
  Errors are returned as JSON {error, details} with:
  - 400: Invalid address, lock id, timestamp or schedule
  - 404: Lock, token, profile or watchlist entry not found
  - 422: Lock with a lock type we cannot interpret
  - 502: Explorer answered with an error
  - 500: Anything else

  Secondary sources (prices, holders, on-chain cross-checks) are optional:
  when they fail the field is omitted and the failure is counted in
  megascan_upstream_errors_total.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - refresher.go: Background snapshot refresh
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"github.com/megascan/lock-engine/chain"
	"github.com/megascan/lock-engine/explorer"
	"github.com/megascan/lock-engine/factory"
	"github.com/megascan/lock-engine/locks"
	"github.com/megascan/lock-engine/prefs"
	"github.com/megascan/lock-engine/vesting"
)

// MaxTopHolders caps the holder list in the token overview.
const MaxTopHolders = 10

// =============================================================================
// DEPENDENCIES
// =============================================================================

// ChainReader is the subset of *chain.Client the handlers use.
type ChainReader interface {
	locks.Reader
	locks.BurnReader
	GetLockWithMilestones(ctx context.Context, id uint64) (chain.Lock, error)
	VestedAmount(ctx context.Context, id uint64) (*big.Int, error)
	ClaimableAmount(ctx context.Context, id uint64) (*big.Int, error)
	TotalBurned(ctx context.Context, token common.Address) (*big.Int, error)
	LockLogs(ctx context.Context, token common.Address) ([]chain.LockEvent, error)
}

// Explorer is the subset of *explorer.Client the handlers use.
type Explorer interface {
	Token(ctx context.Context, address string) (*explorer.TokenInfo, error)
	Holders(ctx context.Context, address string) ([]explorer.Holder, error)
	Price(ctx context.Context, token string) (*explorer.Price, error)
	Positions(ctx context.Context, address string) ([]explorer.Position, error)
	Developer(ctx context.Context, token string) (*explorer.DeveloperReport, error)
}

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Chain     ChainReader
	Explorer  Explorer
	Prefs     prefs.Store
	Snapshots locks.SnapshotStore
	Schedules *factory.ScheduleFactory
	Metrics   *Metrics

	// ScanLimit bounds token lock scans; 0 means locks.DefaultScanLimit.
	ScanLimit uint64

	now func() time.Time
}

// NewHandler creates a handler with its own metrics registry.
func NewHandler(c ChainReader, x Explorer, p prefs.Store, s locks.SnapshotStore) *Handler {
	return &Handler{
		Chain:     c,
		Explorer:  x,
		Prefs:     p,
		Snapshots: s,
		Schedules: factory.NewScheduleFactory(),
		Metrics:   NewMetrics(),
		now:       time.Now,
	}
}

// =============================================================================
// CURVE HANDLERS
// =============================================================================

// BuildCurve returns the curve of a posted schedule, evaluated at the
// requested probe timestamps.
func (h *Handler) BuildCurve(w http.ResponseWriter, r *http.Request) {
	var req CurveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	s, err := h.Schedules.FromJSON(req.Schedule)
	if err != nil {
		writeError(w, statusFor(err), "Invalid schedule", err)
		return
	}

	curve := vesting.BuildCurve(s)
	dto := toCurveDTO(s, curve, vesting.Inspect(s), h.Schedules)
	for _, at := range req.At {
		dto.Probes = append(dto.Probes, PointDTO{At: at, Fraction: curve.ValueAt(at)})
	}

	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// LOCK HANDLERS
// =============================================================================

// ListLocks returns the newest locks on the contract, newest first, with the
// contract's vested percentage. ?limit defaults to 50 and is capped at 200.
func (h *Handler) ListLocks(w http.ResponseWriter, r *http.Request) {
	var limit uint64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid limit", fmt.Errorf("%w: limit=%q", ErrBadRequest, raw))
			return
		}
		limit = n
	}

	recent, err := locks.Recent(r.Context(), h.Chain, limit)
	if err != nil {
		writeError(w, statusFor(err), "Failed to list locks", err)
		return
	}

	dto := RecentLocksDTO{Total: recent.Total, Locks: make([]RecentLockDTO, 0, len(recent.Locks))}
	for _, rl := range recent.Locks {
		if rl.Vested == nil {
			h.Metrics.UpstreamError("chain")
		}
		dto.Locks = append(dto.Locks, toRecentLockDTO(rl))
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetLock returns a lock with its curve and amounts at ?at (default now).
// The contract's own vested/claimable figures are included for comparison.
func (h *Handler) GetLock(w http.ResponseWriter, r *http.Request) {
	id, err := lockIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid lock id", err)
		return
	}
	at, err := h.atParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid timestamp", err)
		return
	}

	ctx := r.Context()
	l, err := h.Chain.GetLockWithMilestones(ctx, id)
	if err != nil {
		writeError(w, statusFor(err), "Failed to load lock", err)
		return
	}
	view, err := locks.NewLockView(l, at)
	if err != nil {
		writeError(w, statusFor(err), "Unsupported lock schedule", err)
		return
	}

	dto := toLockDTO(view, h.Schedules)
	if v, err := h.Chain.VestedAmount(ctx, id); err == nil {
		dto.OnChainVested = strPtr(v.String())
	} else {
		h.Metrics.UpstreamError("chain")
	}
	if v, err := h.Chain.ClaimableAmount(ctx, id); err == nil {
		dto.OnChainClaimable = strPtr(v.String())
	} else {
		h.Metrics.UpstreamError("chain")
	}

	writeJSON(w, http.StatusOK, dto)
}

// GetLockValue returns only the unlock fraction of a lock at ?at.
func (h *Handler) GetLockValue(w http.ResponseWriter, r *http.Request) {
	id, err := lockIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid lock id", err)
		return
	}
	at, err := h.atParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid timestamp", err)
		return
	}

	l, err := h.Chain.GetLockWithMilestones(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), "Failed to load lock", err)
		return
	}
	s, err := l.Schedule()
	if err != nil {
		writeError(w, statusFor(err), "Unsupported lock schedule", err)
		return
	}

	curve := vesting.BuildCurve(s)
	writeJSON(w, http.StatusOK, LockValueDTO{
		LockID:   id,
		At:       at,
		Fraction: curve.ValueAt(at),
		Status:   string(curve.Status(at)),
	})
}

// =============================================================================
// TOKEN HANDLERS
// =============================================================================

// GetToken returns the explorer's token resource merged with the on-chain
// burned total, the top holders and the DEX price.
func (h *Handler) GetToken(w http.ResponseWriter, r *http.Request) {
	addr, hex, err := addressParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid address", err)
		return
	}
	ctx := r.Context()

	info, err := h.Explorer.Token(ctx, hex)
	if err != nil {
		writeError(w, statusFor(err), "Failed to load token", err)
		return
	}

	dto := TokenOverviewDTO{
		Address:      addr.Hex(),
		Name:         info.Name,
		Symbol:       info.Symbol,
		Decimals:     info.DecimalsOr(locks.DefaultDecimals),
		TotalSupply:  info.TotalSupply,
		HoldersCount: info.HoldersCount,
		Type:         info.Type,
		IconURL:      info.IconURL,
		TopHolders:   []Holder{},
	}

	if holders, err := h.Explorer.Holders(ctx, hex); err == nil {
		for i, hd := range holders {
			if i == MaxTopHolders {
				break
			}
			dto.TopHolders = append(dto.TopHolders, Holder{Address: hd.Address.Hash, Value: hd.Value})
		}
	} else {
		h.Metrics.UpstreamError("explorer")
	}

	if p, err := h.Explorer.Price(ctx, hex); err == nil && p != nil {
		dto.PriceUSD = strPtr(p.USD.String())
		dto.PriceChange24h = p.PriceChange24h
	} else if err != nil {
		h.Metrics.UpstreamError("explorer")
	}

	if burned, err := h.Chain.TotalBurned(ctx, addr); err == nil {
		dto.TotalBurned = strPtr(burned.String())
	} else {
		h.Metrics.UpstreamError("chain")
	}

	if watched, err := h.Prefs.IsWatched(ctx, hex); err == nil {
		dto.Watched = watched
	}

	writeJSON(w, http.StatusOK, dto)
}

// GetTokenLocks scans the lock contract for the token's active locks and
// caches the result as a snapshot.
func (h *Handler) GetTokenLocks(w http.ResponseWriter, r *http.Request) {
	addr, _, err := addressParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid address", err)
		return
	}
	ctx := r.Context()

	scan, err := locks.ScanToken(ctx, h.Chain, addr, h.ScanLimit)
	if err != nil {
		writeError(w, statusFor(err), "Failed to scan locks", err)
		return
	}

	now := h.now()
	if err := h.Snapshots.SaveSnapshot(ctx, locks.NewSnapshot(scan, now)); err != nil {
		log.Printf("[API] Failed to save snapshot of %s: %v", addr.Hex(), err)
	}

	dto := TokenLocksDTO{
		Token:     addr.Hex(),
		Decimals:  locks.DefaultDecimals,
		LockCount: scan.Count(),
		Scanned:   scan.Scanned,
		Skipped:   scan.Skipped,
		Locks:     []LockDTO{},
	}
	if meta, err := h.Chain.TokenMeta(ctx, addr); err == nil {
		dto.Symbol = meta.Symbol
		dto.Decimals = meta.Decimals
	} else {
		h.Metrics.UpstreamError("chain")
	}
	dto.TotalLocked = bigString(scan.TotalLocked)
	dto.TotalFormatted = locks.FormatTokenAmount(scan.TotalLocked, dto.Decimals)

	dto.Locks = h.lockDTOs(scan.Locks, now.Unix())
	writeJSON(w, http.StatusOK, dto)
}

// GetTokenSnapshot returns the newest cached scan of the token.
func (h *Handler) GetTokenSnapshot(w http.ResponseWriter, r *http.Request) {
	addr, _, err := addressParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid address", err)
		return
	}

	snap, err := h.Snapshots.LatestSnapshot(r.Context(), addr)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load snapshot", err)
		return
	}
	if snap == nil {
		writeError(w, http.StatusNotFound, "No snapshot for token", nil)
		return
	}

	writeJSON(w, http.StatusOK, toSnapshotDTO(*snap))
}

// GetTokenDeveloper reports who deployed the token and whether they still
// hold it.
func (h *Handler) GetTokenDeveloper(w http.ResponseWriter, r *http.Request) {
	_, hex, err := addressParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid address", err)
		return
	}

	report, err := h.Explorer.Developer(r.Context(), hex)
	if err != nil {
		writeError(w, statusFor(err), "Failed to load developer", err)
		return
	}
	if report == nil {
		writeError(w, http.StatusNotFound, "Deployer unknown", nil)
		return
	}

	writeJSON(w, http.StatusOK, toDeveloperDTO(report))
}

// GetTokenActivity folds the token's lock events per lock.
func (h *Handler) GetTokenActivity(w http.ResponseWriter, r *http.Request) {
	addr, _, err := addressParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid address", err)
		return
	}

	events, err := h.Chain.LockLogs(r.Context(), addr)
	if err != nil {
		writeError(w, statusFor(err), "Failed to load lock events", err)
		return
	}

	activity := locks.SummarizeActivity(events)
	dtos := make([]ActivityDTO, len(activity))
	for i, a := range activity {
		dtos[i] = toActivityDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ADDRESS HANDLERS
// =============================================================================

// GetAddressLocks lists locks created by or payable to the address.
func (h *Handler) GetAddressLocks(w http.ResponseWriter, r *http.Request) {
	addr, _, err := addressParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid address", err)
		return
	}

	found, err := locks.AddressLocks(r.Context(), h.Chain, addr)
	if err != nil {
		writeError(w, statusFor(err), "Failed to load locks", err)
		return
	}

	now := h.now().Unix()
	dtos := make([]AddressLockDTO, 0, len(found))
	for _, al := range found {
		view, err := locks.NewLockView(al.Lock, now)
		if err != nil {
			log.Printf("[API] Skipping lock %d: %v", al.ID, err)
			continue
		}
		dtos = append(dtos, AddressLockDTO{
			LockDTO:  toLockDTO(view, h.Schedules),
			Created:  al.Created,
			Received: al.Received,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAddressBurns returns how much of each token the address burned.
func (h *Handler) GetAddressBurns(w http.ResponseWriter, r *http.Request) {
	addr, _, err := addressParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid address", err)
		return
	}

	burns, err := locks.BurnSummary(r.Context(), h.Chain, addr)
	if err != nil {
		writeError(w, statusFor(err), "Failed to load burns", err)
		return
	}

	dtos := make([]BurnDTO, len(burns))
	for i, b := range burns {
		dtos[i] = toBurnDTO(b)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAddressPositions returns the address's token balances valued in USD.
func (h *Handler) GetAddressPositions(w http.ResponseWriter, r *http.Request) {
	_, hex, err := addressParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid address", err)
		return
	}

	positions, err := h.Explorer.Positions(r.Context(), hex)
	if err != nil {
		writeError(w, statusFor(err), "Failed to load positions", err)
		return
	}

	resp := PositionsResponse{
		Address:   hex,
		TotalUSD:  explorer.TotalValue(positions).StringFixed(2),
		Positions: make([]PositionDTO, len(positions)),
	}
	for i, p := range positions {
		resp.Positions[i] = toPositionDTO(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// WATCHLIST HANDLERS
// =============================================================================

// ListWatchlist returns watched tokens in the order they were added.
func (h *Handler) ListWatchlist(w http.ResponseWriter, r *http.Request) {
	items, err := h.Prefs.ListWatchlist(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list watchlist", err)
		return
	}

	dtos := make([]WatchItemDTO, len(items))
	for i, it := range items {
		dtos[i] = toWatchItemDTO(it)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AddWatch adds a token. Answers 201 when added, 200 when already watched.
func (h *Handler) AddWatch(w http.ResponseWriter, r *http.Request) {
	var req AddWatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	item, err := prefs.NewWatchItem(req.Address, req.Name, req.Symbol)
	if err != nil {
		writeError(w, statusFor(err), "Invalid watchlist entry", err)
		return
	}

	added, err := h.Prefs.AddWatch(r.Context(), item)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to add watch", err)
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, toWatchItemDTO(item))
}

// RemoveWatch deletes a token from the watchlist.
func (h *Handler) RemoveWatch(w http.ResponseWriter, r *http.Request) {
	_, hex, err := addressParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid address", err)
		return
	}

	if err := h.Prefs.RemoveWatch(r.Context(), hex); err != nil {
		writeError(w, statusFor(err), "Failed to remove watch", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PROFILE HANDLERS
// =============================================================================

// GetProfile returns the profile of an address.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	_, hex, err := addressParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid address", err)
		return
	}

	p, err := h.Prefs.GetProfile(r.Context(), hex)
	if err != nil {
		writeError(w, statusFor(err), "Profile not found", err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileDTO(*p))
}

// SaveProfile creates or replaces the profile of an address. Username and
// handle are trimmed to their maximum lengths.
func (h *Handler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	_, hex, err := addressParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid address", err)
		return
	}

	var req SaveProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, err := prefs.NewProfile(hex, req.Username, req.XHandle)
	if err != nil {
		writeError(w, statusFor(err), "Invalid profile", err)
		return
	}

	ctx := r.Context()
	if err := h.Prefs.SaveProfile(ctx, p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save profile", err)
		return
	}

	saved, err := h.Prefs.GetProfile(ctx, hex)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload profile", err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileDTO(*saved))
}

// Health is a liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) lockDTOs(ls []chain.Lock, now int64) []LockDTO {
	out := make([]LockDTO, 0, len(ls))
	for _, l := range ls {
		view, err := locks.NewLockView(l, now)
		if err != nil {
			log.Printf("[API] Skipping lock %d: %v", l.ID, err)
			continue
		}
		out = append(out, toLockDTO(view, h.Schedules))
	}
	return out
}

// atParam reads ?at as Unix seconds, defaulting to now.
func (h *Handler) atParam(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("at")
	if raw == "" {
		return h.now().Unix(), nil
	}
	at, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: at=%q", ErrBadRequest, raw)
	}
	return at, nil
}

func lockIDParam(r *http.Request) (uint64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: lock id %q", ErrBadRequest, raw)
	}
	return id, nil
}

// addressParam validates {address}, returning it parsed and as lowercase hex.
func addressParam(r *http.Request) (common.Address, string, error) {
	hex, err := prefs.NormalizeAddress(chi.URLParam(r, "address"))
	if err != nil {
		return common.Address{}, "", err
	}
	return common.HexToAddress(hex), hex, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func strPtr(s string) *string {
	return &s
}
