package repository

// Table and field names mirror the worksheet headers the data model grew
// out of, so an existing store keeps working unchanged. The cie field is
// the tenant id and appears in all three tables.
const (
	TableTenants  = "Escola"
	TableAccounts = "Usuarios"
	TableAssets   = "Equipamentos"

	fieldTenantID   = "cie"
	fieldTenantName = "nome"
	fieldTenantKey  = "chave"

	fieldAccountLogin = "user"
	fieldAccountPass  = "pass"
	fieldAccountName  = "nome"
	fieldAccountRole  = "cargo"

	fieldAssetType    = "tipo"
	fieldAssetModel   = "nome"
	fieldAssetSerial  = "serial"
	fieldAssetTag     = "pat"
	fieldAssetInvoice = "nf"
	fieldAssetStatus  = "sit"
	fieldAssetProblem = "prob"
	fieldAssetDate    = "data"
	fieldAssetAuthor  = "autor"
	fieldAssetPhoto   = "foto_b64"
)
