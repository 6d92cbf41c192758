package dto

// RegisterBookRequest HTTP入馆登记请求
// validator tag说明:
// - required: 必填字段
// - min/max: 数值范围校验
type RegisterBookRequest struct {
	ISBN            string `json:"isbn" binding:"required" example:"9787115428028"`
	Title           string `json:"title" binding:"required,max=200" example:"Go语言实战"`
	Author          string `json:"author" binding:"required,max=100" example:"威廉·肯尼迪"`
	Publisher       string `json:"publisher" binding:"max=100" example:"人民邮电出版社"`
	Category        string `json:"category" binding:"max=50" example:"计算机"`
	PublicationYear int    `json:"publication_year" binding:"omitempty,min=1450,max=2100" example:"2017"`
	TotalCopies     int    `json:"total_copies" binding:"required,min=1,max=1000" example:"5"`
	CoverURL        string `json:"cover_url" binding:"omitempty,url,max=500" example:"https://example.com/cover.jpg"`
	Description     string `json:"description" binding:"max=5000" example:"Go语言入门与实战"`
}

// UpdateBookRequest HTTP修改图书信息请求
type UpdateBookRequest struct {
	Title       string `json:"title" binding:"required,max=200" example:"Go语言实战"`
	Author      string `json:"author" binding:"required,max=100" example:"威廉·肯尼迪"`
	Publisher   string `json:"publisher" binding:"max=100" example:"人民邮电出版社"`
	Category    string `json:"category" binding:"max=50" example:"计算机"`
	Description string `json:"description" binding:"max=5000" example:"Go语言入门与实战"`
}

// AdjustCopiesRequest HTTP调整馆藏总数请求
type AdjustCopiesRequest struct {
	TotalCopies int `json:"total_copies" binding:"required,min=1,max=1000" example:"8"`
}

// BookResponse HTTP图书响应
// 用于单个图书详情返回
type BookResponse struct {
	ID              uint   `json:"id" example:"1"`
	ISBN            string `json:"isbn" example:"9787115428028"`
	Title           string `json:"title" example:"Go语言实战"`
	Author          string `json:"author" example:"威廉·肯尼迪"`
	Publisher       string `json:"publisher" example:"人民邮电出版社"`
	Category        string `json:"category" example:"计算机"`
	PublicationYear int    `json:"publication_year" example:"2017"`
	TotalCopies     int    `json:"total_copies" example:"5"`
	AvailableCopies int    `json:"available_copies" example:"3"`
	CopiesOnLoan    int    `json:"copies_on_loan" example:"2"`
	IsAvailable     bool   `json:"is_available" example:"true"`
	CoverURL        string `json:"cover_url" example:"https://example.com/cover.jpg"`
	Description     string `json:"description" example:"Go语言入门与实战"`
	CreatedAt       string `json:"created_at" example:"2024-01-15 10:30:00"`
}

// BookListItem HTTP图书列表项
// 列表查询时不返回Description字段(减少数据传输量)
type BookListItem struct {
	ID              uint   `json:"id" example:"1"`
	ISBN            string `json:"isbn" example:"9787115428028"`
	Title           string `json:"title" example:"Go语言实战"`
	Author          string `json:"author" example:"威廉·肯尼迪"`
	Publisher       string `json:"publisher" example:"人民邮电出版社"`
	Category        string `json:"category" example:"计算机"`
	TotalCopies     int    `json:"total_copies" example:"5"`
	AvailableCopies int    `json:"available_copies" example:"3"`
	CoverURL        string `json:"cover_url" example:"https://example.com/cover.jpg"`
	CreatedAt       string `json:"created_at" example:"2024-01-15 10:30:00"`
}
