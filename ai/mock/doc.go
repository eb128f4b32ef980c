// Package mock provides test doubles for the ai service interfaces.
//
// The defaults are deterministic: the embedder derives unit vectors
// from a hash of the text, and the extractor passes the source through
// trimmed. Tests needing failures or custom behavior set the exported
// function fields:
//
//	provider := mock.NewMockProvider().(*mock.Provider)
//	provider.Emb.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return nil, errors.New("embedding backend down")
//	}
package mock
