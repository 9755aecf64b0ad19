package employee

import "github.com/ogurasousui/codex-crm/internal/core/transform"

// RequestToEntity は Request から未永続化の Employee を組み立てます。
var RequestToEntity transform.Transformer[Request, *Employee] = transform.Func[Request, *Employee](
	func(req Request) (*Employee, error) {
		return &Employee{
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			Email:      req.Email,
			Department: req.Department,
		}, nil
	},
)

// EntityToResponse は Employee を公開用の Response に変換します。
var EntityToResponse transform.Transformer[*Employee, Response] = transform.Func[*Employee, Response](
	func(e *Employee) (Response, error) {
		if e == nil {
			return Response{}, transform.Missing("employee")
		}
		return Response{
			ID:         e.ID,
			FirstName:  e.FirstName,
			LastName:   e.LastName,
			Email:      e.Email,
			Department: e.Department,
		}, nil
	},
)
