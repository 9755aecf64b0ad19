package customer

import (
	"github.com/ogurasousui/codex-crm/internal/core/shared"
	"github.com/ogurasousui/codex-crm/internal/core/transform"
)

// RequestToEntity は Request から未永続化の Customer を組み立てます。
var RequestToEntity transform.Transformer[Request, *Customer] = transform.Func[Request, *Customer](
	func(req Request) (*Customer, error) {
		return &Customer{
			FirstName:           req.FirstName,
			LastName:            req.LastName,
			Email:               req.Email,
			Phone:               req.Phone,
			Address:             req.Address,
			LastInteractionDate: req.LastInteractionDate.TimePtr(),
			EmployeeID:          req.EmployeeID,
		}, nil
	},
)

// EntityToResponse は Customer を公開用の Response に変換します。担当社員のない顧客は変換できません。
var EntityToResponse transform.Transformer[*Customer, Response] = transform.Func[*Customer, Response](
	func(c *Customer) (Response, error) {
		if c == nil {
			return Response{}, transform.Missing("customer")
		}
		if c.EmployeeID == "" {
			return Response{}, transform.Missing("employeeId")
		}
		return Response{
			ID:                  c.ID,
			FirstName:           c.FirstName,
			LastName:            c.LastName,
			Email:               c.Email,
			Phone:               c.Phone,
			Address:             c.Address,
			LastInteractionDate: shared.DatePtr(c.LastInteractionDate),
			EmployeeID:          c.EmployeeID,
		}, nil
	},
)
