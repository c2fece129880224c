package ride

import "ride-hail-client/internal/domain/auth"

// Presentation 狀態對應的顯示資訊。
type Presentation struct {
	Label string
	Color string
	Icon  string
	Hint  string
}

var presentations = map[Status]Presentation{
	StatusRequested:  {Label: "În așteptare", Color: "#ffa000", Icon: "time-outline", Hint: "Așteptăm un șofer să accepte cursa ta..."},
	StatusAccepted:   {Label: "Acceptată", Color: "#1976d2", Icon: "car-outline", Hint: "Șoferul este în drum spre tine!"},
	StatusInProgress: {Label: "În desfășurare", Color: "#388e3c", Icon: "navigate-outline", Hint: "Ești în drum spre destinație!"},
	StatusCompleted:  {Label: "Finalizată", Color: "#388e3c", Icon: "checkmark-circle-outline"},
	StatusCancelled:  {Label: "Anulată", Color: "#d32f2f", Icon: "close-circle-outline"},
}

// driver-side overrides
var driverPresentations = map[Status]Presentation{
	StatusRequested:  {Label: "Solicitată", Color: "#ffa000", Icon: "time-outline", Hint: "Cursă disponibilă pentru acceptare."},
	StatusAccepted:   {Label: "Acceptată", Color: "#1976d2", Icon: "car-outline", Hint: "Mergi la punctul de preluare."},
	StatusInProgress: {Label: "În desfășurare", Color: "#388e3c", Icon: "navigate-outline", Hint: "Condu clientul la destinație."},
}

// Describe 回傳狀態的顯示資訊；未知狀態以原字串顯示。
func Describe(status Status, role auth.Role) Presentation {
	if role == auth.RoleDriver {
		if p, ok := driverPresentations[status]; ok {
			return p
		}
	}
	if p, ok := presentations[status]; ok {
		return p
	}
	return Presentation{Label: string(status), Color: "#757575", Icon: "help-circle-outline"}
}
