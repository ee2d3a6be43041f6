package smartsample

import (
	"context"
	"time"

	"github.com/kailas-cloud/smartsample/internal/domain"
	domsel "github.com/kailas-cloud/smartsample/internal/domain/selection"
	selectionuc "github.com/kailas-cloud/smartsample/internal/usecase/selection"
)

// Select keeps exactly target of the given candidates.
func (c *Client) Select(
	ctx context.Context, cands []Candidate, target int, opts ...SelectOption,
) (res Result, err error) {
	start := time.Now()
	sc := newSelectConfig(c.layout, opts)
	defer func() {
		c.obs.observe("select", start, err,
			"strategy", string(res.Strategy), "candidates", len(cands), "target", target)
	}()

	r, err := c.selSvc.Select(ctx, toCandidates(cands), target, sc.opts)
	if err != nil {
		return Result{}, err
	}
	return fromResult(r, nil, len(cands)), nil
}

// SelectFiles fingerprints the files and keeps exactly target of the
// readable ones. Files are walked folder by folder in natural name order.
func (c *Client) SelectFiles(
	ctx context.Context, paths []string, target int, opts ...SelectOption,
) (Result, error) {
	sc := newSelectConfig(c.layout, opts)
	return c.selectFiles(ctx, "select_files", selectionuc.Request{
		Paths:   paths,
		Target:  target,
		Options: sc.opts,
	})
}

// SelectDir scans dir for images and keeps exactly target of the readable
// ones. WithRecursive, WithInclude and WithExclude narrow the scan.
func (c *Client) SelectDir(
	ctx context.Context, dir string, target int, opts ...SelectOption,
) (Result, error) {
	sc := newSelectConfig(c.layout, opts)
	return c.selectFiles(ctx, "select_dir", selectionuc.Request{
		Dir:     dir,
		Filter:  sc.filter,
		Target:  target,
		Options: sc.opts,
	})
}

func (c *Client) selectFiles(ctx context.Context, op string, req selectionuc.Request) (res Result, err error) {
	start := time.Now()
	defer func() {
		c.obs.observe(op, start, err, "inputs", res.Inputs, "target", req.Target)
	}()

	report, err := c.selSvc.SelectFiles(ctx, req)
	res = fromResult(report.Result, report.Skipped, report.Inputs)
	if err != nil {
		// Skipped inputs stay visible when too few images were readable.
		return Result{Skipped: res.Skipped, Inputs: res.Inputs}, err
	}
	return res, nil
}

func fromResult(r domsel.Result, skipped []*domain.DecodeError, inputs int) Result {
	return Result{
		Strategy:        r.Strategy,
		Selected:        r.Selected,
		Excluded:        r.Excluded,
		NearestIncluded: r.NearestIncluded,
		Buckets:         r.Buckets,
		Skipped:         fromDecodeErrors(skipped),
		Inputs:          inputs,
	}
}
