/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures served to the frontend. Internal types carry
  *big.Int and decimal.Decimal; every raw token amount leaves the API as a
  base-10 string so JavaScript clients never lose precision.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Curves:    CurveRequest, CurveDTO, PointDTO, AnomalyDTO
  Locks:     LockDTO, LockValueDTO, TokenLocksDTO, AddressLockDTO
  Tokens:    TokenOverviewDTO, SnapshotDTO, DeveloperDTO, ActivityDTO
  Addresses: BurnDTO, PositionDTO, PositionsResponse
  Prefs:     WatchItemDTO, AddWatchRequest, ProfileDTO, SaveProfileRequest

SEE ALSO:
  - handlers.go: Uses these types
  - factory/schedule.go: ScheduleJSON type
*/
package api

import (
	"math/big"
	"time"

	"github.com/megascan/lock-engine/explorer"
	"github.com/megascan/lock-engine/factory"
	"github.com/megascan/lock-engine/locks"
	"github.com/megascan/lock-engine/prefs"
	"github.com/megascan/lock-engine/vesting"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CURVES
// =============================================================================

// CurveRequest asks for the curve of an arbitrary schedule.
type CurveRequest struct {
	Schedule factory.ScheduleJSON `json:"schedule"`
	// At lists timestamps to evaluate the curve at.
	At []int64 `json:"at,omitempty"`
}

type PointDTO struct {
	At       int64   `json:"at"`
	Fraction float64 `json:"fraction"`
}

type AnomalyDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CurveDTO is a built curve ready to chart.
type CurveDTO struct {
	Kind      string               `json:"kind"`
	Label     string               `json:"label"`
	Start     int64                `json:"start"`
	End       int64                `json:"end"`
	Schedule  factory.ScheduleJSON `json:"schedule"`
	Points    []PointDTO           `json:"points"`
	Anomalies []AnomalyDTO         `json:"anomalies"`
	Probes    []PointDTO           `json:"probes,omitempty"`
}

// =============================================================================
// LOCKS
// =============================================================================

// LockDTO is a lock with its curve evaluated at At.
type LockDTO struct {
	ID          uint64   `json:"id"`
	Token       string   `json:"token"`
	Creator     string   `json:"creator"`
	Beneficiary string   `json:"beneficiary"`
	LockType    uint8    `json:"lock_type"`
	StartTime   uint64   `json:"start_time"`
	CliffTime   uint64   `json:"cliff_time"`
	EndTime     uint64   `json:"end_time"`
	Cancelable  bool     `json:"cancelable"`
	Cancelled   bool     `json:"cancelled"`
	TotalAmount string   `json:"total_amount"`
	Claimed     string   `json:"claimed_amount"`
	Remaining   string   `json:"remaining"`
	Vested      string   `json:"vested"`
	Claimable   string   `json:"claimable"`
	Progress    string   `json:"progress_percent"`
	At          int64    `json:"at"`
	Fraction    float64  `json:"fraction"`
	Status      string   `json:"status"`
	Curve       CurveDTO `json:"curve"`

	// OnChainVested and OnChainClaimable are the contract's own figures,
	// absent when the call failed.
	OnChainVested    *string `json:"onchain_vested,omitempty"`
	OnChainClaimable *string `json:"onchain_claimable,omitempty"`
}

// RecentLockDTO is one row of the recent-locks listing.
type RecentLockDTO struct {
	ID          uint64 `json:"id"`
	LockType    uint8  `json:"lock_type"`
	TypeLabel   string `json:"type_label"`
	Cancelled   bool   `json:"cancelled"`
	Token       string `json:"token"`
	Creator     string `json:"creator"`
	Beneficiary string `json:"beneficiary"`
	TotalAmount string `json:"total_amount"`
	StartTime   uint64 `json:"start_time"`
	EndTime     uint64 `json:"end_time"`

	// Vested is the contract's figure, absent when the call failed.
	Vested        *string `json:"vested,omitempty"`
	VestedPercent string  `json:"vested_percent"`
}

// RecentLocksDTO answers /locks.
type RecentLocksDTO struct {
	Total uint64          `json:"total"`
	Locks []RecentLockDTO `json:"locks"`
}

// LockValueDTO answers /locks/{id}/value.
type LockValueDTO struct {
	LockID   uint64  `json:"lock_id"`
	At       int64   `json:"at"`
	Fraction float64 `json:"fraction"`
	Status   string  `json:"status"`
}

// TokenLocksDTO is a token's lock scan.
type TokenLocksDTO struct {
	Token          string    `json:"token"`
	Symbol         string    `json:"symbol,omitempty"`
	Decimals       uint8     `json:"decimals"`
	LockCount      int       `json:"lock_count"`
	TotalLocked    string    `json:"total_locked"`
	TotalFormatted string    `json:"total_locked_formatted"`
	Scanned        uint64    `json:"scanned"`
	Skipped        int       `json:"skipped"`
	Locks          []LockDTO `json:"locks"`
}

// AddressLockDTO is a lock touching an address.
type AddressLockDTO struct {
	LockDTO
	Created  bool `json:"created"`
	Received bool `json:"received"`
}

// =============================================================================
// TOKENS
// =============================================================================

// TokenOverviewDTO merges explorer facts with on-chain burn totals. Fields
// whose source failed are omitted.
type TokenOverviewDTO struct {
	Address        string   `json:"address"`
	Name           string   `json:"name"`
	Symbol         string   `json:"symbol"`
	Decimals       uint8    `json:"decimals"`
	TotalSupply    string   `json:"total_supply"`
	HoldersCount   string   `json:"holders_count"`
	Type           string   `json:"type"`
	IconURL        *string  `json:"icon_url,omitempty"`
	PriceUSD       *string  `json:"price_usd,omitempty"`
	PriceChange24h *float64 `json:"price_change_24h,omitempty"`
	TotalBurned    *string  `json:"total_burned,omitempty"`
	TopHolders     []Holder `json:"top_holders"`
	Watched        bool     `json:"watched"`
}

type Holder struct {
	Address string `json:"address"`
	Value   string `json:"value"`
}

// SnapshotDTO is a cached lock scan.
type SnapshotDTO struct {
	Token       string    `json:"token"`
	LockCount   int       `json:"lock_count"`
	TotalLocked string    `json:"total_locked"`
	LockIDs     []uint64  `json:"lock_ids"`
	Scanned     uint64    `json:"scanned"`
	Skipped     int       `json:"skipped"`
	TakenAt     time.Time `json:"taken_at"`
}

// DeveloperDTO reports a token's deployer.
type DeveloperDTO struct {
	Deployer      string  `json:"deployer"`
	Status        *string `json:"status,omitempty"`
	Balance       *string `json:"balance,omitempty"`
	Received      *string `json:"received,omitempty"`
	Sent          *string `json:"sent,omitempty"`
	TokensCreated *int    `json:"tokens_created,omitempty"`
}

// ActivityDTO is one lock's event history.
type ActivityDTO struct {
	LockID      uint64 `json:"lock_id"`
	Creator     string `json:"creator"`
	Beneficiary string `json:"beneficiary"`
	LockType    uint8  `json:"lock_type"`
	Created     string `json:"created"`
	Claimed     string `json:"claimed"`
	Claims      int    `json:"claims"`
	Cancelled   bool   `json:"cancelled"`
	Returned    string `json:"returned"`
}

// =============================================================================
// ADDRESSES
// =============================================================================

type BurnDTO struct {
	Token     string `json:"token"`
	Symbol    string `json:"symbol"`
	Decimals  uint8  `json:"decimals"`
	Amount    string `json:"amount"`
	Formatted string `json:"formatted"`
	Count     int    `json:"count"`
}

type PositionDTO struct {
	Token          string   `json:"token"`
	Symbol         string   `json:"symbol"`
	Name           string   `json:"name"`
	Decimals       uint8    `json:"decimals"`
	Balance        string   `json:"balance"`
	Units          string   `json:"units"`
	PriceUSD       *string  `json:"price_usd"`
	PriceChange24h *float64 `json:"price_change_24h"`
	ValueUSD       *string  `json:"value_usd"`
}

type PositionsResponse struct {
	Address   string        `json:"address"`
	TotalUSD  string        `json:"total_usd"`
	Positions []PositionDTO `json:"positions"`
}

// =============================================================================
// PREFERENCES
// =============================================================================

type WatchItemDTO struct {
	Address string    `json:"address"`
	Name    string    `json:"name"`
	Symbol  string    `json:"symbol"`
	AddedAt time.Time `json:"added_at"`
}

type AddWatchRequest struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type ProfileDTO struct {
	Address   string    `json:"address"`
	Username  string    `json:"username"`
	XHandle   string    `json:"x_handle"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SaveProfileRequest struct {
	Username string `json:"username"`
	XHandle  string `json:"x_handle"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toCurveDTO(s vesting.Schedule, c vesting.Curve, anomalies []vesting.Anomaly, schedules *factory.ScheduleFactory) CurveDTO {
	pts := make([]PointDTO, len(c.Points))
	for i, p := range c.Points {
		pts[i] = PointDTO{At: p.At, Fraction: p.Fraction}
	}
	as := make([]AnomalyDTO, len(anomalies))
	for i, a := range anomalies {
		as[i] = AnomalyDTO{Code: string(a.Code), Message: a.Message}
	}
	return CurveDTO{
		Kind:      schedules.ToJSON(s).Kind,
		Label:     c.Kind.String(),
		Start:     c.Start,
		End:       c.End,
		Schedule:  schedules.ToJSON(s),
		Points:    pts,
		Anomalies: as,
	}
}

func toLockDTO(v locks.LockView, schedules *factory.ScheduleFactory) LockDTO {
	l := v.Lock
	return LockDTO{
		ID:          l.ID,
		Token:       l.Token.Hex(),
		Creator:     l.Creator.Hex(),
		Beneficiary: l.Beneficiary.Hex(),
		LockType:    l.LockType,
		StartTime:   l.StartTime,
		CliffTime:   l.CliffTime,
		EndTime:     l.EndTime,
		Cancelable:  l.Cancelable,
		Cancelled:   l.Cancelled,
		TotalAmount: bigString(l.TotalAmount),
		Claimed:     bigString(l.ClaimedAmount),
		Remaining:   v.Remaining.String(),
		Vested:      v.Vested.String(),
		Claimable:   v.Claimable.String(),
		Progress:    v.Progress.StringFixed(2),
		At:          v.At,
		Fraction:    v.Fraction,
		Status:      string(v.Status),
		Curve:       toCurveDTO(v.Schedule, v.Curve, v.Anomalies, schedules),
	}
}

func toRecentLockDTO(rl locks.RecentLock) RecentLockDTO {
	dto := RecentLockDTO{
		ID:            rl.ID,
		LockType:      rl.LockType,
		TypeLabel:     vesting.Kind(rl.LockType).String(),
		Cancelled:     rl.Cancelled,
		Token:         rl.Token.Hex(),
		Creator:       rl.Creator.Hex(),
		Beneficiary:   rl.Beneficiary.Hex(),
		TotalAmount:   bigString(rl.TotalAmount),
		StartTime:     rl.StartTime,
		EndTime:       rl.EndTime,
		VestedPercent: rl.VestedPercent.StringFixed(2),
	}
	if rl.Vested != nil {
		dto.Vested = strPtr(rl.Vested.String())
	}
	return dto
}

func toSnapshotDTO(s locks.Snapshot) SnapshotDTO {
	ids := s.LockIDs
	if ids == nil {
		ids = []uint64{}
	}
	return SnapshotDTO{
		Token:       s.Token.Hex(),
		LockCount:   s.LockCount,
		TotalLocked: s.TotalLocked.String(),
		LockIDs:     ids,
		Scanned:     s.Scanned,
		Skipped:     s.Skipped,
		TakenAt:     s.TakenAt,
	}
}

func toDeveloperDTO(r *explorer.DeveloperReport) DeveloperDTO {
	dto := DeveloperDTO{Deployer: r.Deployer, TokensCreated: r.TokensCreated}
	if a := r.Activity; a != nil {
		status := string(a.Status)
		balance, received, sent := a.Balance.String(), a.Received.String(), a.Sent.String()
		dto.Status = &status
		dto.Balance = &balance
		dto.Received = &received
		dto.Sent = &sent
	}
	return dto
}

func toActivityDTO(a locks.Activity) ActivityDTO {
	return ActivityDTO{
		LockID:      a.LockID,
		Creator:     a.Creator.Hex(),
		Beneficiary: a.Beneficiary.Hex(),
		LockType:    a.LockType,
		Created:     bigString(a.Created),
		Claimed:     bigString(a.Claimed),
		Claims:      a.Claims,
		Cancelled:   a.Cancelled,
		Returned:    bigString(a.Returned),
	}
}

func toBurnDTO(b locks.TokenBurn) BurnDTO {
	return BurnDTO{
		Token:     b.Token.Hex(),
		Symbol:    b.Symbol,
		Decimals:  b.Decimals,
		Amount:    bigString(b.Amount),
		Formatted: locks.FormatTokenAmount(b.Amount, b.Decimals),
		Count:     b.Count,
	}
}

func toPositionDTO(p explorer.Position) PositionDTO {
	dto := PositionDTO{
		Token:          p.Token,
		Symbol:         p.Symbol,
		Name:           p.Name,
		Decimals:       p.Decimals,
		Balance:        p.Balance.String(),
		Units:          p.Units().String(),
		PriceChange24h: p.PriceChange24h,
	}
	if p.PriceUSD != nil {
		s := p.PriceUSD.String()
		dto.PriceUSD = &s
	}
	if p.ValueUSD != nil {
		s := p.ValueUSD.StringFixed(2)
		dto.ValueUSD = &s
	}
	return dto
}

func toWatchItemDTO(w prefs.WatchItem) WatchItemDTO {
	return WatchItemDTO{Address: w.Address, Name: w.Name, Symbol: w.Symbol, AddedAt: w.AddedAt}
}

func toProfileDTO(p prefs.Profile) ProfileDTO {
	return ProfileDTO{Address: p.Address, Username: p.Username, XHandle: p.XHandle, UpdatedAt: p.UpdatedAt}
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
