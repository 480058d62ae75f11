package birthday

import "whatsapp-disparador/internal/model"

// ExportSelection maps contacts to the campaign handoff shape.
func ExportSelection(contacts []model.Contact) []model.ExportedClient {
	out := make([]model.ExportedClient, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, model.ExportedClient{
			DisplayName: c.DisplayName(),
			PhoneNumber: c.PhoneNumber,
		})
	}
	return out
}
