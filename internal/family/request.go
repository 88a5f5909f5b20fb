package family

type CreateFamilyRequest struct {
	Name string `json:"name"`
}

type CreateMemberRequest struct {
	Name         string `json:"name"`
	Mobile       string `json:"mobile"`
	FamilyName   string `json:"family_name"`
	Relationship string `json:"relationship"`
}

type UpdateMemberRequest struct {
	Name         *string `json:"name,omitempty"`
	Relationship *string `json:"relationship,omitempty"`
}
