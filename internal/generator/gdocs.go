package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"certdocs/internal/apperror"
	"certdocs/internal/model"
)

const (
	defaultGoogleRPS   = 5.0
	defaultGoogleBurst = 10
	defaultMaxTries    = 3
)

// NewGoogleServices builds Docs and Drive clients from a service account key.
// Extra options are appended after the credentials.
func NewGoogleServices(ctx context.Context, credentialsJSON []byte, opts ...option.ClientOption) (*docs.Service, *drive.Service, error) {
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, docs.DocumentsScope, drive.DriveScope)
	if err != nil {
		return nil, nil, fmt.Errorf("parse google credentials: %w", err)
	}
	opts = append([]option.ClientOption{option.WithTokenSource(creds.TokenSource)}, opts...)

	docsSvc, err := docs.NewService(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create docs service: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create drive service: %w", err)
	}
	return docsSvc, driveSvc, nil
}

// GoogleTemplateAPI implements TemplateAPI on Google Docs and Drive. All
// calls share one token bucket. Copy, export and delete are retried with
// exponential backoff on 429 and 5xx responses; replace-all is sent once.
type GoogleTemplateAPI struct {
	docs       *docs.Service
	drive      *drive.Service
	limiter    *rate.Limiter
	maxTries   uint
	newBackOff func() backoff.BackOff
}

func NewGoogleTemplateAPI(docsSvc *docs.Service, driveSvc *drive.Service, rps float64, burst int) *GoogleTemplateAPI {
	if rps <= 0 {
		rps = defaultGoogleRPS
	}
	if burst <= 0 {
		burst = defaultGoogleBurst
	}
	return &GoogleTemplateAPI{
		docs:       docsSvc,
		drive:      driveSvc,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		maxTries:   defaultMaxTries,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}
}

func (g *GoogleTemplateAPI) Copy(ctx context.Context, templateID, name string) (string, error) {
	const op = "gdocs.Copy"
	var id string
	err := g.do(ctx, op, true, func() error {
		f, err := g.drive.Files.Copy(templateID, &drive.File{Name: name}).
			SupportsAllDrives(true).
			Fields("id").
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		id = f.Id
		return nil
	})
	return id, err
}

// ReplaceAll sends one replace-all request per field, in key order. A
// placeholder that does not occur in the document is not an error.
func (g *GoogleTemplateAPI) ReplaceAll(ctx context.Context, documentID string, fields model.FieldMap) error {
	const op = "gdocs.ReplaceAll"
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	reqs := make([]*docs.Request, 0, len(keys))
	for _, k := range keys {
		replace := &docs.ReplaceAllTextRequest{
			ContainsText: &docs.SubstringMatchCriteria{Text: placeholder(k), MatchCase: true},
			ReplaceText:  fields[k],
		}
		if fields[k] == "" {
			replace.ForceSendFields = []string{"ReplaceText"}
		}
		reqs = append(reqs, &docs.Request{ReplaceAllText: replace})
	}

	return g.do(ctx, op, false, func() error {
		_, err := g.docs.Documents.BatchUpdate(documentID, &docs.BatchUpdateDocumentRequest{Requests: reqs}).
			Context(ctx).
			Do()
		return err
	})
}

func (g *GoogleTemplateAPI) ExportPDF(ctx context.Context, documentID string) ([]byte, error) {
	const op = "gdocs.ExportPDF"
	var pdf []byte
	err := g.do(ctx, op, true, func() error {
		resp, err := g.drive.Files.Export(documentID, model.ContentTypePDF).Context(ctx).Download()
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		pdf, err = io.ReadAll(resp.Body)
		return err
	})
	return pdf, err
}

func (g *GoogleTemplateAPI) Delete(ctx context.Context, documentID string) error {
	const op = "gdocs.Delete"
	return g.do(ctx, op, true, func() error {
		return g.drive.Files.Delete(documentID).SupportsAllDrives(true).Context(ctx).Do()
	})
}

func (g *GoogleTemplateAPI) do(ctx context.Context, op string, retry bool, call func() error) error {
	tries := uint(1)
	if retry {
		tries = g.maxTries
	}
	attempt := func() (struct{}, error) {
		if err := g.limiter.Wait(ctx); err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		err := call()
		if err != nil && !retryable(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}
	_, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(g.newBackOff()),
		backoff.WithMaxTries(tries),
	)
	if err != nil {
		return apperror.RemoteService(op, err)
	}
	return nil
}

func retryable(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests || gerr.Code >= http.StatusInternalServerError
	}
	return false
}
