package tools

import (
	"context"
	"fmt"

	"github.com/minhyannv/stockbot-go/pkg/finance"
	"github.com/mitchellh/mapstructure"
)

const (
	GetSymbolTool     = "get_symbol"
	GetStockPriceTool = "get_stock_price"
)

// StockLookup is the market-data backend behind the stock tools.
type StockLookup interface {
	ResolveSymbol(ctx context.Context, company string) (string, error)
	FetchLatestPrice(ctx context.Context, symbol string) (finance.PriceSnapshot, error)
}

// RegisterStockTools registers get_symbol and get_stock_price, in that
// order, using the descriptors from the embedded catalog.
func RegisterStockTools(r *Registry, lookup StockLookup) error {
	if lookup == nil {
		return fmt.Errorf("stock lookup is required")
	}
	catalog, err := DefaultCatalog()
	if err != nil {
		return err
	}

	impls := []struct {
		name string
		fn   Func
	}{
		{GetSymbolTool, getSymbol(lookup)},
		{GetStockPriceTool, getStockPrice(lookup)},
	}
	for _, impl := range impls {
		desc, ok := lookupDescriptor(catalog, impl.name)
		if !ok {
			return fmt.Errorf("tool catalog has no entry for %s", impl.name)
		}
		if err := r.Register(desc, impl.fn); err != nil {
			return err
		}
	}
	return nil
}

func getSymbol(lookup StockLookup) Func {
	return func(ctx context.Context, args map[string]any) (any, error) {
		var in struct {
			Company string `mapstructure:"company"`
		}
		if err := decodeArgs(args, &in); err != nil {
			return nil, &MalformedArgumentsError{Tool: GetSymbolTool, Err: err}
		}
		symbol, err := lookup.ResolveSymbol(ctx, in.Company)
		if err != nil {
			return nil, err
		}
		return symbol, nil
	}
}

func getStockPrice(lookup StockLookup) Func {
	return func(ctx context.Context, args map[string]any) (any, error) {
		var in struct {
			Symbol string `mapstructure:"symbol"`
		}
		if err := decodeArgs(args, &in); err != nil {
			return nil, &MalformedArgumentsError{Tool: GetStockPriceTool, Err: err}
		}
		snapshot, err := lookup.FetchLatestPrice(ctx, in.Symbol)
		if err != nil {
			return nil, err
		}
		return snapshot, nil
	}
}

// decodeArgs decodes a model-supplied argument map into a typed struct.
func decodeArgs(args map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "mapstructure",
		Result:  out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(args)
}
