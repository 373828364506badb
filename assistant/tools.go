package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/llms"

	"supernova/models"
)

// Tool names exposed to the model.
const (
	ToolSearchProduct    = "searchProduct"
	ToolAddProductToCart = "addProductToCart"
)

// ProductSearcher is satisfied by clients.ProductClient.
type ProductSearcher interface {
	Search(ctx context.Context, credential, query string) ([]models.Product, error)
}

// CartAdder is satisfied by clients.CartClient.
type CartAdder interface {
	AddItem(ctx context.Context, credential, productID string, qty int) (json.RawMessage, error)
}

// Toolbox executes tool calls against the product and cart services on
// behalf of the connected user.
type Toolbox struct {
	products ProductSearcher
	carts    CartAdder
}

func NewToolbox(products ProductSearcher, carts CartAdder) *Toolbox {
	return &Toolbox{products: products, carts: carts}
}

// Definitions describes the tools in the function-calling format.
func (t *Toolbox) Definitions() []llms.Tool {
	return []llms.Tool{
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        ToolSearchProduct,
				Description: "Search for products based on a query",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"query": map[string]any{
							"type":        "string",
							"description": "The search query for products",
						},
					},
					"required": []string{"query"},
				},
			},
		},
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        ToolAddProductToCart,
				Description: "Add a product to the shopping cart",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"productId": map[string]any{
							"type":        "string",
							"description": "The id of the product to add to the cart",
						},
						"qty": map[string]any{
							"type":        "number",
							"description": "The quantity of the product to add to the cart",
							"default":     1,
						},
					},
					"required": []string{"productId"},
				},
			},
		},
	}
}

type searchArgs struct {
	Query string `json:"query"`
}

type addToCartArgs struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

// Execute runs one tool call and returns its result as a JSON string.
// Failures are reported inside the result so the model can react to them.
func (t *Toolbox) Execute(ctx context.Context, credential string, call llms.ToolCall) string {
	if call.FunctionCall == nil {
		return errorResult("tool call has no function")
	}

	switch name := call.FunctionCall.Name; name {
	case ToolSearchProduct:
		var args searchArgs
		if err := decodeArgs(call.FunctionCall.Arguments, &args); err != nil {
			return errorResult(err.Error())
		}
		products, err := t.products.Search(ctx, credential, args.Query)
		if err != nil {
			slog.WarnContext(ctx, "searchProduct failed", "query", args.Query, "error", err)
			return errorResult("Failed to search products")
		}
		return mustJSON(map[string]any{"data": products})

	case ToolAddProductToCart:
		var args addToCartArgs
		if err := decodeArgs(call.FunctionCall.Arguments, &args); err != nil {
			return errorResult(err.Error())
		}
		if args.Qty <= 0 {
			args.Qty = 1
		}
		data, err := t.carts.AddItem(ctx, credential, args.ProductID, args.Qty)
		if err != nil {
			slog.WarnContext(ctx, "addProductToCart failed", "product_id", args.ProductID, "error", err)
			return mustJSON(map[string]any{
				"success": false,
				"error":   fmt.Sprintf("Failed to add product %s to cart: %v", args.ProductID, err),
			})
		}
		return mustJSON(map[string]any{
			"success": true,
			"message": fmt.Sprintf("Added product with id %s (qty: %d) to cart", args.ProductID, args.Qty),
			"data":    data,
		})

	default:
		return errorResult(fmt.Sprintf("Tool %s not found", name))
	}
}

func decodeArgs(raw string, out any) error {
	if raw == "" {
		raw = "{}"
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("invalid tool arguments: %w", err)
	}
	return nil
}

func errorResult(message string) string {
	return mustJSON(map[string]any{"error": message})
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return `{"error":"failed to encode tool result"}`
	}
	return string(data)
}
