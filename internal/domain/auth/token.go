package auth

// CredentialPair 封裝 access/refresh token。
// access 為短效 token，每個請求都會附帶；refresh 僅用於換發新的 access。
type CredentialPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Complete 檢查兩個 token 是否都存在；缺一視同沒有 session。
func (p CredentialPair) Complete() bool {
	return p.Access != "" && p.Refresh != ""
}

// WithAccess 回傳替換 access 後的新組合，refresh 保持不變。
func (p CredentialPair) WithAccess(access string) CredentialPair {
	p.Access = access
	return p
}
