package provider

import (
	"github.com/NATEHSIAO/pdf-invoice/core/domain"
	"github.com/NATEHSIAO/pdf-invoice/core/port/out"
)

// Factory resolves mail provider adapters by provider name. Adapters are
// stateless with respect to users (tokens are passed per call), so a single
// instance per provider is shared.
type Factory struct {
	gmail   *GmailAdapter
	outlook *OutlookAdapter
}

// NewFactory creates a provider factory with both adapters configured.
func NewFactory(gmailCfg *GmailConfig, outlookCfg *OutlookConfig) *Factory {
	return &Factory{
		gmail:   NewGmailAdapter(gmailCfg),
		outlook: NewOutlookAdapter(outlookCfg),
	}
}

// CreateProvider returns the adapter for the given provider name.
func (f *Factory) CreateProvider(providerType string) (out.MailProviderPort, error) {
	parsed, err := domain.ParseMailProvider(providerType)
	if err != nil {
		return nil, err
	}

	if parsed == domain.ProviderMicrosoft {
		return f.outlook, nil
	}
	return f.gmail, nil
}

var _ out.MailProviderFactory = (*Factory)(nil)
