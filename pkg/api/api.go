// Package api exposes key generation, encryption and analysis over HTTP.
// Bit strings travel as JSON strings, either "0101..." or "0x..." hex.
package api

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"bitfeistel/internal/fn"
	"bitfeistel/pkg/analysis"
	"bitfeistel/pkg/bitseq"
	"bitfeistel/pkg/feistel"
	"bitfeistel/pkg/log"
	"bitfeistel/pkg/permutation"
	"bitfeistel/pkg/store"
	"bitfeistel/pkg/viz"

	"github.com/labstack/echo/v4"
)

// maxPermSize bounds GET /perm/:n so a request cannot ask for a huge graph.
const maxPermSize = 4096

type Api struct {
	Echo     *echo.Echo
	Store    *store.Store // optional; reports are not kept without it
	Defaults *analysis.Options
}

// KeyRequest names a key by seed, passphrase or expanded key bits. Exactly
// one of the three must be set.
type KeyRequest struct {
	Seed       string `json:"seed,omitempty"`
	Passphrase string `json:"passphrase,omitempty"`
	SeedBits   int    `json:"seed_bits,omitempty"` // for Passphrase, default 16
	Key        string `json:"key,omitempty"`
}

type KeyResponse struct {
	Key         string `json:"key"`
	Bits        int    `json:"bits"`
	Rounds      int    `json:"rounds"`
	Fingerprint string `json:"fingerprint"`
}

type CryptRequest struct {
	KeyRequest
	Data string `json:"data"`
}

type CryptResponse struct {
	Bits string `json:"bits"`
	Hex  string `json:"hex,omitempty"` // set when the block is byte aligned
}

// AnalyzeRequest overrides the server defaults; zero fields keep them.
type AnalyzeRequest struct {
	SeedBits        int `json:"seed_bits"`
	Iterations      int `json:"iterations"`
	CollisionKeys   int `json:"collision_keys"`
	DiffusionTrials int `json:"diffusion_trials"`
	ConfusionTrials int `json:"confusion_trials"`
	CompressBlocks  int `json:"compress_blocks"`
}

type PermResponse struct {
	Size    int   `json:"size"`
	Forward []int `json:"forward"`
	Inverse []int `json:"inverse"`
}

func NewApi(st *store.Store, defaults *analysis.Options) *Api {
	if defaults == nil {
		defaults = analysis.DefaultOptions()
	}
	a := &Api{
		Echo:     echo.New(),
		Store:    st,
		Defaults: defaults,
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true
	a.Echo.POST("/gen", a.Gen)
	a.Echo.POST("/enc", a.Enc)
	a.Echo.POST("/dec", a.Dec)
	a.Echo.GET("/perm/:n", a.Perm)
	a.Echo.POST("/analyze", a.Analyze)
	a.Echo.GET("/reports", a.Reports)
	a.Echo.GET("/reports/:id", a.ReportByID)
	return a
}

// Start serves on addr until Shutdown.
func (a *Api) Start(addr string) error {
	log.Info().Str("addr", addr).Msg("api listening")
	err := a.Echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *Api) Shutdown(ctx context.Context) error { return a.Echo.Shutdown(ctx) }

// httpError maps package errors onto status codes.
func httpError(err error) error {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrReportNotFound):
		code = http.StatusNotFound
	case errors.Is(err, feistel.ErrInvalidInputLength),
		errors.Is(err, bitseq.ErrInvalidBit),
		errors.Is(err, bitseq.ErrLengthMismatch),
		errors.Is(err, permutation.ErrDegeneratePermutation):
		code = http.StatusBadRequest
	}
	return echo.NewHTTPError(code, err.Error())
}

func badRequest(format string, v ...any) error {
	return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf(format, v...))
}

func (r *KeyRequest) resolve() (feistel.Key, error) {
	set := 0
	for _, s := range []string{r.Seed, r.Passphrase, r.Key} {
		if s != "" {
			set++
		}
	}
	if set != 1 {
		return feistel.Key{}, badRequest("exactly one of seed, passphrase or key is required")
	}

	switch {
	case r.Key != "":
		bits, err := bitseq.Decode(r.Key)
		if err != nil {
			return feistel.Key{}, badRequest("invalid key: %v", err)
		}
		k, err := feistel.KeyFromBits(bits)
		if err != nil {
			return feistel.Key{}, httpError(err)
		}
		return k, nil
	case r.Passphrase != "":
		seed, err := feistel.SeedFromPassphrase(r.Passphrase, fn.Or(r.SeedBits, 16))
		if err != nil {
			return feistel.Key{}, httpError(err)
		}
		return generate(seed)
	default:
		seed, err := bitseq.Decode(r.Seed)
		if err != nil {
			return feistel.Key{}, badRequest("invalid seed: %v", err)
		}
		return generate(seed)
	}
}

func generate(seed bitseq.Sequence) (feistel.Key, error) {
	k, err := feistel.GenerateKey(seed)
	if err != nil {
		return feistel.Key{}, httpError(err)
	}
	return k, nil
}

func (a *Api) Gen(c echo.Context) error {
	var req KeyRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	k, err := req.resolve()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, KeyResponse{
		Key:         k.String(),
		Bits:        k.Len(),
		Rounds:      k.Rounds(),
		Fingerprint: k.Fingerprint(),
	})
}

func (a *Api) Enc(c echo.Context) error { return a.crypt(c, feistel.Encrypt) }
func (a *Api) Dec(c echo.Context) error { return a.crypt(c, feistel.Decrypt) }

func (a *Api) crypt(c echo.Context, op func(feistel.Key, bitseq.Sequence) (bitseq.Sequence, error)) error {
	var req CryptRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	k, err := req.resolve()
	if err != nil {
		return err
	}
	data, err := bitseq.Decode(req.Data)
	if err != nil {
		return badRequest("invalid data: %v", err)
	}
	out, err := op(k, data)
	if err != nil {
		return httpError(err)
	}
	resp := CryptResponse{Bits: out.String()}
	if b, err := out.Bytes(); err == nil {
		resp.Hex = hex.EncodeToString(b)
	}
	return c.JSON(http.StatusOK, resp)
}

// Perm returns the affine permutation of size n as JSON, or as a wiring
// diagram with ?format=dot or ?format=svg.
func (a *Api) Perm(c echo.Context) error {
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil || n > maxPermSize {
		return badRequest("size must be an integer up to %d", maxPermSize)
	}
	p, err := permutation.Generate(n)
	if err != nil {
		return httpError(err)
	}
	switch c.QueryParam("format") {
	case "", "json":
		return c.JSON(http.StatusOK, PermResponse{Size: p.Size(), Forward: p.Forward(), Inverse: p.Inverse()})
	case "dot":
		return c.String(http.StatusOK, viz.DOT(p))
	case "svg":
		svg, err := viz.SVG(c.Request().Context(), p)
		if err != nil {
			return httpError(err)
		}
		return c.Blob(http.StatusOK, "image/svg+xml", svg)
	default:
		return badRequest("unknown format %q", c.QueryParam("format"))
	}
}

func (a *Api) options(req AnalyzeRequest) *analysis.Options {
	opts := *a.Defaults
	override := func(dst *int, v int) {
		if v > 0 {
			*dst = v
		}
	}
	override(&opts.SeedBits, req.SeedBits)
	override(&opts.Iterations, req.Iterations)
	override(&opts.CollisionKeys, req.CollisionKeys)
	override(&opts.DiffusionTrials, req.DiffusionTrials)
	override(&opts.ConfusionTrials, req.ConfusionTrials)
	override(&opts.CompressBlocks, req.CompressBlocks)
	return &opts
}

func (a *Api) Analyze(c echo.Context) error {
	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	opts := a.options(req)
	if err := opts.Validate(); err != nil {
		return badRequest("%v", err)
	}
	r, err := analysis.Run(opts)
	if err != nil {
		return httpError(err)
	}
	if a.Store != nil {
		if err := a.Store.SaveReport(r); err != nil {
			log.Error().Err(err).Str("report", r.ID).Msg("failed to save report")
			return httpError(err)
		}
	}
	return c.JSON(http.StatusOK, r)
}

func (a *Api) Reports(c echo.Context) error {
	if a.Store == nil {
		return c.JSON(http.StatusOK, []*analysis.Report{})
	}
	n := 20
	if s := c.QueryParam("n"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return badRequest("n must be a positive integer")
		}
		n = v
	}
	reports, err := a.Store.LastReports(n)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, reports)
}

func (a *Api) ReportByID(c echo.Context) error {
	if a.Store == nil {
		return httpError(fmt.Errorf("%w: %s", store.ErrReportNotFound, c.Param("id")))
	}
	r, err := a.Store.Report(c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, r)
}
