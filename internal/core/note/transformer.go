package note

import (
	"time"

	"github.com/ogurasousui/codex-crm/internal/core/shared"
	"github.com/ogurasousui/codex-crm/internal/core/transform"
)

// RequestToEntity は Request から未永続化の Note を組み立てます。
var RequestToEntity transform.Transformer[Request, *Note] = transform.Func[Request, *Note](
	func(req Request) (*Note, error) {
		var date time.Time
		if req.Date != nil {
			date = req.Date.Time
		}
		return &Note{
			Content:         req.Content,
			Date:            date,
			InteractionType: req.InteractionType,
			CustomerID:      req.CustomerID,
			EmployeeID:      req.EmployeeID,
		}, nil
	},
)

// EntityToResponse は Note を公開用の Response に変換します。
var EntityToResponse transform.Transformer[*Note, Response] = transform.Func[*Note, Response](
	func(n *Note) (Response, error) {
		if n == nil {
			return Response{}, transform.Missing("note")
		}
		if n.CustomerID == "" {
			return Response{}, transform.Missing("customerId")
		}
		return Response{
			ID:              n.ID,
			Content:         n.Content,
			Date:            shared.DateOf(n.Date),
			InteractionType: n.InteractionType,
			CustomerID:      n.CustomerID,
			EmployeeID:      n.EmployeeID,
		}, nil
	},
)
