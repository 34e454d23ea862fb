package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"stockroom/internal/core"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

// maxToolIterations bounds the agentic loop so a confused model cannot spin
// on tool calls forever.
const maxToolIterations = 8

const systemPrompt = `You are an inventory assistant for a small business.
Answer questions about stock levels, products, suppliers, orders, and sales
performance using the provided tools. All tools are read-only.
Rules:
1. Always look data up with tools; never invent quantities or totals.
2. Dates are YYYY-MM-DD strings.
3. Quantities are whole units; money values are decimal strings.
4. If the question cannot be answered from the available data, say so.`

// Agent answers natural language questions over the inventory database
// through a bounded tool-calling loop. It holds no write tools.
type Agent struct {
	client *openai.Client
	tools  *ToolRegistry
}

// NewAgent builds an Agent with read tools over the given services.
func NewAgent(
	apiKey string,
	catalog core.CatalogService,
	inventory core.InventoryService,
	reporting core.ReportingService,
	purchase core.PurchaseOrderService,
	sales core.SalesOrderService,
) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{
		client: &client,
		tools:  buildToolRegistry(catalog, inventory, reporting, purchase, sales),
	}
}

// Ask runs the agentic loop: the model calls read tools as needed, then
// produces a final text answer.
func (a *Agent) Ask(ctx context.Context, question string) (string, error) {
	params := responses.ResponseNewParams{
		Model:        shared.ResponsesModel(shared.ChatModelGPT4o),
		Instructions: param.NewOpt(systemPrompt),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(question),
		},
		Tools: a.tools.ToOpenAITools(),
	}

	for i := 0; i < maxToolIterations; i++ {
		resp, err := a.client.Responses.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("openai responses error: %w", err)
		}

		var outputs responses.ResponseInputParam
		for _, item := range resp.Output {
			if item.Type != "function_call" {
				continue
			}
			result := a.runTool(ctx, item.Name, item.Arguments)
			outputs = append(outputs, responses.ResponseInputItemParamOfFunctionCallOutput(item.CallID, result))
		}

		if len(outputs) == 0 {
			text := resp.OutputText()
			if text == "" {
				return "", fmt.Errorf("empty response content")
			}
			return text, nil
		}

		params.PreviousResponseID = param.NewOpt(resp.ID)
		params.Input = responses.ResponseNewParamsInputUnion{OfInputItemList: outputs}
	}

	return "", fmt.Errorf("assistant exceeded %d tool iterations without an answer", maxToolIterations)
}

// runTool executes one tool call. Errors are returned to the model as text
// so it can recover or report them instead of aborting the loop.
func (a *Agent) runTool(ctx context.Context, name, arguments string) string {
	tool, ok := a.tools.Get(name)
	if !ok {
		return fmt.Sprintf(`{"error": "unknown tool %q"}`, name)
	}

	args := map[string]any{}
	if arguments != "" {
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return fmt.Sprintf(`{"error": "invalid tool arguments: %v"}`, err)
		}
	}

	result, err := tool.Handler(ctx, args)
	if err != nil {
		msg, _ := json.Marshal(err.Error())
		return fmt.Sprintf(`{"error": %s}`, msg)
	}
	return result
}

// ── Tool registry ─────────────────────────────────────────────────────────────

type stockLevelsParams struct {
	ProductID  int `json:"product_id,omitempty" jsonschema_description:"Filter by product ID, 0 or omitted for all products"`
	LocationID int `json:"location_id,omitempty" jsonschema_description:"Filter by location ID, 0 or omitted for all locations"`
}

type salesReportParams struct {
	FromDate   string `json:"from_date,omitempty" jsonschema_description:"Inclusive start date YYYY-MM-DD"`
	ToDate     string `json:"to_date,omitempty" jsonschema_description:"Inclusive end date YYYY-MM-DD"`
	ProductID  int    `json:"product_id,omitempty" jsonschema_description:"Filter by product ID"`
	SupplierID int    `json:"supplier_id,omitempty" jsonschema_description:"Filter by supplier ID"`
	GroupBy    string `json:"group_by,omitempty" jsonschema:"enum=none,enum=product,enum=supplier,enum=day,enum=month" jsonschema_description:"Row grouping, default none"`
	CostBasis  string `json:"cost_basis,omitempty" jsonschema:"enum=current,enum=order_time" jsonschema_description:"Cost valuation, default current"`
}

type listOrdersParams struct {
	Kind   string `json:"kind" jsonschema:"enum=purchase,enum=sales" jsonschema_description:"Which order book to list"`
	Status string `json:"status,omitempty" jsonschema:"enum=draft,enum=pending,enum=received,enum=completed,enum=cancelled" jsonschema_description:"Optional status filter"`
}

type emptyParams struct{}

func buildToolRegistry(
	catalog core.CatalogService,
	inventory core.InventoryService,
	reporting core.ReportingService,
	purchase core.PurchaseOrderService,
	sales core.SalesOrderService,
) *ToolRegistry {
	reg := NewToolRegistry()

	reg.Register(ToolDefinition{
		Name:        "get_stock_levels",
		Description: "Current stock quantity for each product and location, optionally filtered.",
		InputSchema: inputSchemaFor(stockLevelsParams{}),
		Handler: func(ctx context.Context, params map[string]any) (string, error) {
			levels, err := inventory.GetStockLevels(ctx, intParam(params, "product_id"), intParam(params, "location_id"))
			if err != nil {
				return "", err
			}
			return marshalResult(levels)
		},
	})

	reg.Register(ToolDefinition{
		Name:        "get_low_stock",
		Description: "Tracked inventory items at or below their reorder threshold.",
		InputSchema: inputSchemaFor(emptyParams{}),
		Handler: func(ctx context.Context, _ map[string]any) (string, error) {
			levels, err := inventory.GetLowStock(ctx)
			if err != nil {
				return "", err
			}
			return marshalResult(levels)
		},
	})

	reg.Register(ToolDefinition{
		Name:        "sales_report",
		Description: "Revenue, cost, and profit over completed sales orders, with optional date/product/supplier filters and grouping by product, supplier, day, or month.",
		InputSchema: inputSchemaFor(salesReportParams{}),
		Handler: func(ctx context.Context, params map[string]any) (string, error) {
			groupBy, err := core.ParseGroupBy(stringParam(params, "group_by"))
			if err != nil {
				return "", err
			}
			costBasis, err := core.ParseCostBasis(stringParam(params, "cost_basis"))
			if err != nil {
				return "", err
			}
			report, err := reporting.SalesReport(ctx, core.SalesReportParams{
				FromDate:   stringParam(params, "from_date"),
				ToDate:     stringParam(params, "to_date"),
				ProductID:  intParam(params, "product_id"),
				SupplierID: intParam(params, "supplier_id"),
				GroupBy:    groupBy,
				CostBasis:  costBasis,
			})
			if err != nil {
				return "", err
			}
			return marshalResult(report)
		},
	})

	reg.Register(ToolDefinition{
		Name:        "list_products",
		Description: "All products in the catalog with SKU, pricing, and supplier.",
		InputSchema: inputSchemaFor(emptyParams{}),
		Handler: func(ctx context.Context, _ map[string]any) (string, error) {
			products, err := catalog.ListProducts(ctx)
			if err != nil {
				return "", err
			}
			return marshalResult(products)
		},
	})

	reg.Register(ToolDefinition{
		Name:        "list_orders",
		Description: "Purchase or sales orders with reference, status, and total, optionally filtered by status.",
		InputSchema: inputSchemaFor(listOrdersParams{}),
		Handler: func(ctx context.Context, params map[string]any) (string, error) {
			status := stringParam(params, "status")
			switch kind := stringParam(params, "kind"); kind {
			case "purchase":
				orders, err := purchase.List(ctx, status)
				if err != nil {
					return "", err
				}
				return marshalResult(orders)
			case "sales":
				orders, err := sales.List(ctx, status)
				if err != nil {
					return "", err
				}
				return marshalResult(orders)
			default:
				return "", core.NewDomainError(core.ErrCodeValidation, "kind must be purchase or sales, got %q", kind)
			}
		},
	})

	return reg
}

func marshalResult(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal tool result: %w", err)
	}
	return string(raw), nil
}
